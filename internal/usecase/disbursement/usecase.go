package disbursement

import (
	"context"
	"strings"
	"time"

	"creditflow-backend/internal/domain/apperror"
	"creditflow-backend/internal/domain/document"
	domain "creditflow-backend/internal/domain/loan"
	"creditflow-backend/internal/domain/uow"
	"creditflow-backend/internal/infrastructure/logger"
	"creditflow-backend/internal/infrastructure/metrics"
	"creditflow-backend/internal/infrastructure/notify"
	loanuc "creditflow-backend/internal/usecase/loan"
)

type DisburseInput struct {
	LoanID  string `json:"-"`
	Cycode  string `json:"cycode" validate:"required"`
	Extract string `json:"extract" validate:"required"`
}

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

// Disburse sets the disbursement markers on an approved loan that holds a
// complete document set. A second call fails with ALREADY_DISBURSED.
func (u *Usecase) Disburse(ctx context.Context, in DisburseInput) (*loanuc.LoanDTO, error) {
	cycode := strings.TrimSpace(in.Cycode)
	extract := strings.TrimSpace(in.Extract)
	if cycode == "" || extract == "" {
		return nil, apperror.InvalidInput("cycode and extract are required")
	}

	var out *domain.Loan
	err := u.uow.WithinLoanTx(ctx, in.LoanID, func(r uow.Repos, l *domain.Loan) error {
		if l.IsDisbursed() {
			return apperror.AlreadyDisbursed(l.LoanID)
		}
		if l.Status != domain.StatusApproved {
			return apperror.PreconditionFailed("only approved loans can be disbursed, loan is " + string(l.Status))
		}
		docs, err := r.Documents.ListByLoanID(ctx, l.ID)
		if err != nil {
			return err
		}
		if !document.IsComplete(docs) {
			return apperror.PreconditionFailed("loan has no complete generated document set")
		}

		now := u.now()
		l.Cycode = &cycode
		l.Extract = &extract
		l.DisbursedAt = &now
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		out = l
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.Disbursements.Inc()
	u.log.Info("loan disbursed", map[string]any{"loan_id": out.LoanID, "cycode": cycode})
	notify.Send(ctx, u.notifier, u.log, u.cfg.NotifyTimeout, notify.Event{Type: notify.EventDisbursed, LoanID: out.LoanID, UserID: out.UserID})
	return loanuc.ToDTO(out), nil
}
