package document

import (
	"context"

	"creditflow-backend/internal/domain/document"
	"creditflow-backend/internal/infrastructure/blob"
)

type DetailStatus string

const (
	StatusSuccess         DetailStatus = "success"
	StatusFailed          DetailStatus = "failed"
	StatusValidationError DetailStatus = "validation_error"
)

// LoanResult is one loan's line in a batch report.
type LoanResult struct {
	LoanID    string                       `json:"loan_id"`
	UserID    string                       `json:"user_id"`
	Name      string                       `json:"name,omitempty"`
	Status    DetailStatus                 `json:"status"`
	Error     string                       `json:"error,omitempty"`
	Documents []document.GeneratedDocument `json:"documents,omitempty"`
}

// BatchReport sums up one processBatch call. Details follow discovery order.
type BatchReport struct {
	Processed  int          `json:"processed"`
	Successful int          `json:"successful"`
	Failed     int          `json:"failed"`
	Details    []LoanResult `json:"details"`
}

type Uploader interface {
	Upload(ctx context.Context, key, contentType string, data []byte) (blob.Locator, error)
	Delete(ctx context.Context, key string) error
}

// Claimer grants exclusive short-lived processing rights over one loan.
type Claimer interface {
	Claim(ctx context.Context, loanID, token string) (release func(context.Context), ok bool, err error)
}
