package loanmock

import (
	"context"

	domain "creditflow-backend/internal/domain/loan"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset lookups return context.Canceled so a forgotten stub fails loudly.
type Repo struct {
	CreateFn                   func(ctx context.Context, l *domain.Loan) error
	GetByLoanIDFn              func(ctx context.Context, loanID string) (*domain.Loan, error)
	GetByLoanIDForUpdateFn     func(ctx context.Context, loanID string) (*domain.Loan, error)
	GetOpenLoanByUserIDFn      func(ctx context.Context, userID string) (*domain.Loan, error)
	FindEligibleForDocumentsFn func(ctx context.Context, limit int) ([]domain.Loan, error)
	SaveFn                     func(ctx context.Context, l *domain.Loan) error
}

func (m *Repo) Create(ctx context.Context, l *domain.Loan) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return nil
}

func (m *Repo) GetByLoanID(ctx context.Context, loanID string) (*domain.Loan, error) {
	if m.GetByLoanIDFn != nil {
		return m.GetByLoanIDFn(ctx, loanID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*domain.Loan, error) {
	if m.GetByLoanIDForUpdateFn != nil {
		return m.GetByLoanIDForUpdateFn(ctx, loanID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetOpenLoanByUserID(ctx context.Context, userID string) (*domain.Loan, error) {
	if m.GetOpenLoanByUserIDFn != nil {
		return m.GetOpenLoanByUserIDFn(ctx, userID)
	}
	return nil, context.Canceled
}

func (m *Repo) FindEligibleForDocuments(ctx context.Context, limit int) ([]domain.Loan, error) {
	if m.FindEligibleForDocumentsFn != nil {
		return m.FindEligibleForDocumentsFn(ctx, limit)
	}
	return nil, nil
}

func (m *Repo) Save(ctx context.Context, l *domain.Loan) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, l)
	}
	return nil
}
