package uow

import (
	"context"

	"creditflow-backend/internal/domain/document"
	"creditflow-backend/internal/domain/loan"
	"creditflow-backend/internal/domain/user"
)

type Repos struct {
	Loans     loan.Repository
	Documents document.Repository
	Users     user.Repository
}

type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// WithinLoanTx locks the loan row first, then passes it in.
	WithinLoanTx(ctx context.Context, loanID string, fn func(r Repos, l *loan.Loan) error) error
}
