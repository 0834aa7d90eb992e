package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"creditflow-backend/internal/domain/apperror"
	"creditflow-backend/internal/infrastructure/logger"
)

var kindStatus = map[apperror.Kind]int{
	apperror.KindInvalidTransition:      http.StatusConflict,
	apperror.KindAwaitingClientResponse: http.StatusConflict,
	apperror.KindAlreadyDisbursed:       http.StatusConflict,
	apperror.KindPreconditionFailed:     http.StatusUnprocessableEntity,
	apperror.KindNotFound:               http.StatusNotFound,
	apperror.KindUploadFailed:           http.StatusBadGateway,
	apperror.KindInvalidInput:           http.StatusBadRequest,
}

// StatusFor maps an error returned by a use case to an HTTP status.
func StatusFor(err error) int {
	if code, ok := kindStatus[apperror.KindOf(err)]; ok {
		return code
	}
	return http.StatusInternalServerError
}

// respondError writes the error body. Internal errors are logged and hidden
// from the client.
func respondError(c echo.Context, log logger.Logger, err error) error {
	code := StatusFor(err)
	if code == http.StatusInternalServerError {
		log.Error("request failed", map[string]any{
			"method": c.Request().Method,
			"route":  c.Path(),
			"error":  err,
		})
		return c.JSON(code, ErrorResponse{Error: "internal error"})
	}
	return c.JSON(code, ErrorResponse{Error: err.Error(), Code: string(apperror.KindOf(err))})
}

func invalidBody(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
}

// bindValid binds and validates req, writing the error response itself.
// ok is false when a response was already written.
func bindValid(c echo.Context, req any) (ok bool, err error) {
	if err := c.Bind(req); err != nil {
		return false, invalidBody(c)
	}
	if err := c.Validate(req); err != nil {
		return false, c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	return true, nil
}
