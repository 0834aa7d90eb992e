package http

import (
	"io"
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"

	"creditflow-backend/internal/infrastructure/logger"
	"creditflow-backend/internal/usecase/upload"
)

type UploadHandler struct {
	uc  *upload.Usecase
	log logger.Logger
}

func NewUploadHandler(uc *upload.Usecase, log logger.Logger) *UploadHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &UploadHandler{uc: uc, log: log}
}

func readFile(fh *multipart.FileHeader) (upload.File, error) {
	f, err := fh.Open()
	if err != nil {
		return upload.File{}, err
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, upload.MaxFileBytes+1))
	if err != nil {
		return upload.File{}, err
	}
	ct := fh.Header.Get(echo.HeaderContentType)
	if ct == "" || ct == "application/octet-stream" {
		ct = http.DetectContentType(data)
	}
	return upload.File{ContentType: ct, Data: data}, nil
}

func formFile(c echo.Context) (upload.File, bool, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return upload.File{}, false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "multipart field \"file\" is required"})
	}
	f, err := readFile(fh)
	if err != nil {
		return upload.File{}, false, invalidBody(c)
	}
	return f, true, nil
}

func (h *UploadHandler) AttachSignature(c echo.Context) error {
	f, ok, err := formFile(c)
	if !ok {
		return err
	}
	dto, err := h.uc.AttachSignature(c.Request().Context(), c.Param("loan_id"), f)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *UploadHandler) UploadSlot(c echo.Context) error {
	f, ok, err := formFile(c)
	if !ok {
		return err
	}
	dto, err := h.uc.UploadReplacement(c.Request().Context(), c.Param("loan_id"), c.Param("slot"), f)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}
