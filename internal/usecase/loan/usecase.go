package loan

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"creditflow-backend/internal/domain/apperror"
	domain "creditflow-backend/internal/domain/loan"
	"creditflow-backend/internal/domain/user"
	"creditflow-backend/internal/infrastructure/logger"
	"creditflow-backend/pkg/id"
)

type Usecase struct {
	repo  domain.Repository
	users user.Repository
	log   logger.Logger
}

func NewUsecase(r domain.Repository, users user.Repository, log logger.Logger) *Usecase {
	if log == nil {
		log = logger.NewNop()
	}
	return &Usecase{repo: r, users: users, log: log}
}

// Create opens a Draft loan for an existing user.
func (u *Usecase) Create(ctx context.Context, in CreateLoanInput) (*LoanDTO, error) {
	in.Cantity = strings.TrimSpace(in.Cantity)
	if len(in.UserID) != 32 {
		return nil, apperror.InvalidInput("user_id must be 32 characters")
	}
	if !domain.ValidAmount(in.Cantity) {
		return nil, apperror.InvalidInput("cantity must be a positive whole number")
	}
	if strings.TrimSpace(in.Entity) == "" || strings.TrimSpace(in.BankNumberAccount) == "" {
		return nil, apperror.InvalidInput("entity and bank_number_account are required")
	}

	if _, err := u.users.GetByUserID(ctx, in.UserID); err != nil {
		return nil, err
	}

	// Block if the user already has a draft or pending loan.
	open, err := u.repo.GetOpenLoanByUserID(ctx, in.UserID)
	switch {
	case err == nil:
		return nil, apperror.PreconditionFailed(fmt.Sprintf("user %s already has an open loan: %s", in.UserID, open.LoanID))
	case !errors.Is(err, apperror.ErrNotFound):
		return nil, err
	}

	now := time.Now().UTC()
	l := &domain.Loan{
		LoanID:            id.NewID32(),
		UserID:            in.UserID,
		Status:            domain.StatusDraft,
		Cantity:           in.Cantity,
		Entity:            strings.TrimSpace(in.Entity),
		BankNumberAccount: strings.TrimSpace(in.BankNumberAccount),
		StatusUpdatedAt:   now,
	}
	if err := u.repo.Create(ctx, l); err != nil {
		return nil, err
	}
	u.log.Info("loan created", map[string]any{"loan_id": l.LoanID, "user_id": l.UserID})
	return ToDTO(l), nil
}

func (u *Usecase) Get(ctx context.Context, loanID string) (*LoanDTO, error) {
	l, err := u.repo.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	return ToDTO(l), nil
}
