// Package transition applies status changes and the cantity negotiation to
// a loan, one locked row at a time.
package transition

import (
	"context"
	"time"

	"creditflow-backend/internal/domain/apperror"
	domain "creditflow-backend/internal/domain/loan"
	"creditflow-backend/internal/domain/uow"
	"creditflow-backend/internal/infrastructure/logger"
	"creditflow-backend/internal/infrastructure/metrics"
	"creditflow-backend/internal/infrastructure/notify"
	loanuc "creditflow-backend/internal/usecase/loan"
)

type Config struct {
	NotifyTimeout time.Duration
}

type Usecase struct {
	uow      uow.UnitOfWork
	notifier notify.Notifier
	log      logger.Logger
	cfg      Config
	now      func() time.Time
}

func NewUsecase(tx uow.UnitOfWork, n notify.Notifier, log logger.Logger, cfg Config) *Usecase {
	if log == nil {
		log = logger.NewNop()
	}
	return &Usecase{uow: tx, notifier: n, log: log, cfg: cfg, now: func() time.Time { return time.Now().UTC() }}
}

var statusEvents = map[domain.Status]notify.EventType{
	domain.StatusApproved:  notify.EventApproved,
	domain.StatusPostponed: notify.EventPostponed,
	domain.StatusArchived:  notify.EventArchived,
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Transition moves the loan to the requested status. Illegal moves and
// unmet preconditions leave the stored loan untouched.
func (u *Usecase) Transition(ctx context.Context, in TransitionInput) (*loanuc.LoanDTO, error) {
	target, ok := domain.ParseStatus(in.Status)
	if !ok {
		return nil, apperror.InvalidInput("unknown status " + in.Status)
	}

	var (
		out  *domain.Loan
		from domain.Status
	)
	err := u.uow.WithinLoanTx(ctx, in.LoanID, func(r uow.Repos, l *domain.Loan) error {
		if err := domain.CheckTransition(l, target, in.Reason); err != nil {
			return err
		}
		from = l.Status
		domain.Apply(l, target, in.Reason, optional(in.EmployeeID))
		l.StatusUpdatedAt = u.now()
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		out = l
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.StatusTransitions.WithLabelValues(string(from), string(target)).Inc()
	u.log.Info("loan status changed", map[string]any{
		"loan_id": out.LoanID,
		"from":    string(from),
		"to":      string(target),
	})
	if ev, ok := statusEvents[target]; ok {
		notify.Send(ctx, u.notifier, u.log, u.cfg.NotifyTimeout, notify.Event{Type: ev, LoanID: out.LoanID, UserID: out.UserID})
	}
	return loanuc.ToDTO(out), nil
}

// ProposeCantity records an employee counter-offer. The loan stays pending
// and blocks other status changes until the client answers.
func (u *Usecase) ProposeCantity(ctx context.Context, in ProposeCantityInput) (*loanuc.LoanDTO, error) {
	offer, err := domain.NewCantityOffer(in.NewCantity, in.Reason)
	if err != nil {
		return nil, err
	}

	var out *domain.Loan
	err = u.uow.WithinLoanTx(ctx, in.LoanID, func(r uow.Repos, l *domain.Loan) error {
		if err := domain.ProposeCantity(l, offer, optional(in.EmployeeID)); err != nil {
			return err
		}
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		out = l
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.log.Info("cantity offer proposed", map[string]any{"loan_id": out.LoanID, "new_cantity": offer.Amount()})
	notify.Send(ctx, u.notifier, u.log, u.cfg.NotifyTimeout, notify.Event{Type: notify.EventCantityProposed, LoanID: out.LoanID, UserID: out.UserID})
	return loanuc.ToDTO(out), nil
}

// RespondCantity applies the client's answer to an open counter-offer.
func (u *Usecase) RespondCantity(ctx context.Context, in RespondCantityInput) (*loanuc.LoanDTO, error) {
	if in.Accept == nil {
		return nil, apperror.InvalidInput("accept is required")
	}
	accept := *in.Accept

	var out *domain.Loan
	err := u.uow.WithinLoanTx(ctx, in.LoanID, func(r uow.Repos, l *domain.Loan) error {
		if err := domain.RespondCantity(l, accept); err != nil {
			return err
		}
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		out = l
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.log.Info("cantity offer answered", map[string]any{"loan_id": out.LoanID, "accepted": accept, "cantity": out.Cantity})
	return loanuc.ToDTO(out), nil
}
