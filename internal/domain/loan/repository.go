package loan

import "context"

type Repository interface {
	Create(ctx context.Context, l *Loan) error
	GetByLoanID(ctx context.Context, loanID string) (*Loan, error)
	// GetByLoanIDForUpdate locks the row for the rest of the transaction.
	GetByLoanIDForUpdate(ctx context.Context, loanID string) (*Loan, error)
	GetOpenLoanByUserID(ctx context.Context, userID string) (*Loan, error)
	// FindEligibleForDocuments returns loans outside NotDocumentable that have
	// no generated documents, oldest first.
	FindEligibleForDocuments(ctx context.Context, limit int) ([]Loan, error)
	Save(ctx context.Context, l *Loan) error
}
