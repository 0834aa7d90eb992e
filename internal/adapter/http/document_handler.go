package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"creditflow-backend/internal/domain/apperror"
	"creditflow-backend/internal/infrastructure/logger"
	"creditflow-backend/internal/usecase/document"
)

type DocumentHandler struct {
	orch *document.Orchestrator
	log  logger.Logger
}

func NewDocumentHandler(orch *document.Orchestrator, log logger.Logger) *DocumentHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &DocumentHandler{orch: orch, log: log}
}

func (h *DocumentHandler) Sweep(c echo.Context) error {
	report, err := h.orch.RunSweep(c.Request().Context())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, report)
}

// Generate runs the pipeline for one loan. A loan that fails during the run
// still gets its result entry back beside the error.
func (h *DocumentHandler) Generate(c echo.Context) error {
	res, err := h.orch.GenerateForLoan(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		if res.LoanID == "" {
			return respondError(c, h.log, err)
		}
		return c.JSON(StatusFor(err), map[string]any{
			"error":  err.Error(),
			"code":   string(apperror.KindOf(err)),
			"result": res,
		})
	}
	return c.JSON(http.StatusCreated, res)
}

func (h *DocumentHandler) List(c echo.Context) error {
	docs, err := h.orch.ListDocuments(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"documents": docs})
}
