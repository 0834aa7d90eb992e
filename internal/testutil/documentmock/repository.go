package documentmock

import (
	"context"

	domain "creditflow-backend/internal/domain/document"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateSetFn     func(ctx context.Context, docs []domain.GeneratedDocument) error
	ListByLoanIDFn  func(ctx context.Context, loanNumericID uint64) ([]domain.GeneratedDocument, error)
	CountByLoanIDFn func(ctx context.Context, loanNumericID uint64) (int64, error)
}

func (m *Repo) CreateSet(ctx context.Context, docs []domain.GeneratedDocument) error {
	if m.CreateSetFn != nil {
		return m.CreateSetFn(ctx, docs)
	}
	return nil
}

func (m *Repo) ListByLoanID(ctx context.Context, loanNumericID uint64) ([]domain.GeneratedDocument, error) {
	if m.ListByLoanIDFn != nil {
		return m.ListByLoanIDFn(ctx, loanNumericID)
	}
	return nil, nil
}

func (m *Repo) CountByLoanID(ctx context.Context, loanNumericID uint64) (int64, error) {
	if m.CountByLoanIDFn != nil {
		return m.CountByLoanIDFn(ctx, loanNumericID)
	}
	return 0, nil
}
