package document

import "context"

type Repository interface {
	// CreateSet inserts all rows or none.
	CreateSet(ctx context.Context, docs []GeneratedDocument) error
	ListByLoanID(ctx context.Context, loanNumericID uint64) ([]GeneratedDocument, error)
	CountByLoanID(ctx context.Context, loanNumericID uint64) (int64, error)
}
