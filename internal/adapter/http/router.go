package http

import (
	"github.com/labstack/echo/v4"
)

type Handlers struct {
	Health    *Handler
	Loans     *LoanHandler
	Uploads   *UploadHandler
	Documents *DocumentHandler
}

// Register mounts every route. mw wraps the loan and document routes; the
// idempotency middleware lets reads through untouched.
func Register(e *echo.Echo, h Handlers, mw ...echo.MiddlewareFunc) {
	e.GET("/health", h.Health.Health)
	e.GET("/metrics", h.Health.Metrics())

	e.POST("/loans", h.Loans.CreateLoan, mw...)
	e.GET("/loans/:loan_id", h.Loans.GetLoan, mw...)
	e.POST("/loans/:loan_id/status", h.Loans.ChangeStatus, mw...)
	e.POST("/loans/:loan_id/cantity", h.Loans.ProposeCantity, mw...)
	e.POST("/loans/:loan_id/cantity/response", h.Loans.RespondCantity, mw...)
	e.POST("/loans/:loan_id/disbursement", h.Loans.Disburse, mw...)
	e.POST("/loans/:loan_id/signature", h.Uploads.AttachSignature, mw...)
	e.PUT("/loans/:loan_id/uploads/:slot", h.Uploads.UploadSlot, mw...)
	e.POST("/loans/:loan_id/documents", h.Documents.Generate, mw...)
	e.GET("/loans/:loan_id/documents", h.Documents.List, mw...)
	e.POST("/documents/sweep", h.Documents.Sweep, mw...)
}
