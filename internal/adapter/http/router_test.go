package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	stdhttp "net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"creditflow-backend/internal/adapter/middleware"
	"creditflow-backend/internal/adapter/repository/mysql"
	domain "creditflow-backend/internal/domain/loan"
	"creditflow-backend/internal/domain/user"
	"creditflow-backend/internal/infrastructure/blob"
	"creditflow-backend/internal/infrastructure/cache"
	"creditflow-backend/internal/infrastructure/logger"
	"creditflow-backend/internal/infrastructure/render"
	"creditflow-backend/internal/testutil/dbtest"
	"creditflow-backend/internal/usecase/disbursement"
	"creditflow-backend/internal/usecase/document"
	uc "creditflow-backend/internal/usecase/loan"
	"creditflow-backend/internal/usecase/transition"
	"creditflow-backend/internal/usecase/upload"
	"creditflow-backend/pkg/id"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

type app struct {
	e     *echo.Echo
	users *mysql.UserRepository
}

func newApp(t *testing.T) *app {
	t.Helper()
	gdb := dbtest.Open(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	log := logger.NewTest(t)

	loans := mysql.NewLoanRepository(gdb)
	users := mysql.NewUserRepository(gdb)
	tx := mysql.NewGormUoW(gdb)
	up := blob.NewUploader(
		blob.NewLocalStore(t.TempDir(), "http://files.test"),
		blob.RetryConfig{MaxAttempts: 2, BaseDelay: time.Millisecond},
		log,
		blob.WithSleep(func(context.Context, time.Duration) error { return nil }),
	)
	renderer, err := render.NewHTMLRenderer()
	require.NoError(t, err)
	orch := document.NewOrchestrator(document.Deps{
		Loans:     loans,
		Users:     users,
		Documents: mysql.NewDocumentRepository(gdb),
		UoW:       tx,
		Renderer:  renderer,
		Uploader:  up,
		Claimer:   cache.NewLoanClaimer(rdb, time.Minute),
		Log:       log,
	}, document.Config{})

	e := echo.New()
	e.Validator = NewValidator()
	Register(e, Handlers{
		Health: NewHandler(),
		Loans: NewLoanHandler(
			uc.NewUsecase(loans, users, log),
			transition.NewUsecase(tx, nil, log, transition.Config{}),
			disbursement.NewUsecase(tx, nil, log, disbursement.Config{}),
			log,
		),
		Uploads:   NewUploadHandler(upload.NewUsecase(loans, tx, up, log), log),
		Documents: NewDocumentHandler(orch, log),
	}, middleware.IdempotencyMiddleware(rdb, time.Hour, log))

	return &app{e: e, users: users}
}

func (a *app) do(t *testing.T, method, path, reqID, contentType string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	if reqID == "" {
		reqID = id.NewUploadID()
	}
	req.Header.Set(middleware.HeaderRequestID, reqID)
	req.Header.Set(middleware.HeaderRequestAt, strconv.FormatInt(time.Now().Unix(), 10))
	req.Header.Set(middleware.HeaderActorID, "EMP-1")
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func (a *app) json(t *testing.T, method, path string, v any) *httptest.ResponseRecorder {
	t.Helper()
	var b []byte
	if v != nil {
		var err error
		b, err = json.Marshal(v)
		require.NoError(t, err)
	}
	return a.do(t, method, path, "", echo.MIMEApplicationJSON, b)
}

func (a *app) file(t *testing.T, method, path string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "proof.png")
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return a.do(t, method, path, "", mw.FormDataContentType(), buf.Bytes())
}

func decodeLoan(t *testing.T, rec *httptest.ResponseRecorder) uc.LoanDTO {
	t.Helper()
	var dto uc.LoanDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto), rec.Body.String())
	return dto
}

func TestRouter_LoanLifecycle(t *testing.T) {
	a := newApp(t)
	userID := strings.Repeat("c", 32)
	require.NoError(t, a.users.Create(context.Background(), &user.User{
		UserID: userID, FullName: "Ana Torres", DocumentNumber: "1020304050",
	}))

	rec := a.json(t, stdhttp.MethodPost, "/loans", map[string]string{
		"user_id": userID, "cantity": "3000000", "entity": "Banco Uno", "bank_number_account": "000777",
	})
	require.Equal(t, stdhttp.StatusCreated, rec.Code, rec.Body.String())
	loanID := decodeLoan(t, rec).LoanID
	base := "/loans/" + loanID

	rec = a.json(t, stdhttp.MethodPost, base+"/status", map[string]string{"status": "pending"})
	assert.Equal(t, stdhttp.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "required documents missing")

	for _, s := range domain.Slots {
		rec = a.file(t, stdhttp.MethodPut, base+"/uploads/"+string(s), pngBytes)
		require.Equal(t, stdhttp.StatusOK, rec.Code, rec.Body.String())
	}
	rec = a.json(t, stdhttp.MethodPost, base+"/status", map[string]string{"status": "pending"})
	require.Equal(t, stdhttp.StatusOK, rec.Code, rec.Body.String())

	rec = a.json(t, stdhttp.MethodPost, base+"/disbursement", map[string]string{"cycode": "CY1", "extract": "EX1"})
	assert.Equal(t, stdhttp.StatusUnprocessableEntity, rec.Code)

	rec = a.file(t, stdhttp.MethodPost, base+"/signature", pngBytes)
	require.Equal(t, stdhttp.StatusOK, rec.Code, rec.Body.String())
	rec = a.json(t, stdhttp.MethodPost, base+"/status", map[string]string{"status": "approved"})
	require.Equal(t, stdhttp.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "approved", decodeLoan(t, rec).Status)

	rec = a.json(t, stdhttp.MethodPost, base+"/documents", nil)
	require.Equal(t, stdhttp.StatusCreated, rec.Code, rec.Body.String())

	rec = a.json(t, stdhttp.MethodGet, base+"/documents", nil)
	require.Equal(t, stdhttp.StatusOK, rec.Code)
	var listed struct {
		Documents []struct {
			DocumentType string `json:"document_type"`
			PublicURL    string `json:"public_url"`
		} `json:"documents"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed.Documents, 4)
	for _, d := range listed.Documents {
		assert.True(t, strings.HasPrefix(d.PublicURL, "http://files.test/documents/"+loanID+"/"), d.PublicURL)
	}

	rec = a.json(t, stdhttp.MethodPost, base+"/documents", nil)
	assert.Equal(t, stdhttp.StatusUnprocessableEntity, rec.Code)

	rec = a.json(t, stdhttp.MethodPost, base+"/disbursement", map[string]string{"cycode": "CY1", "extract": "EX1"})
	require.Equal(t, stdhttp.StatusOK, rec.Code, rec.Body.String())

	rec = a.json(t, stdhttp.MethodPost, base+"/disbursement", map[string]string{"cycode": "CY2", "extract": "EX2"})
	assert.Equal(t, stdhttp.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "ALREADY_DISBURSED")

	rec = a.json(t, stdhttp.MethodPost, "/documents/sweep", nil)
	require.Equal(t, stdhttp.StatusOK, rec.Code)
	var report document.BatchReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 0, report.Processed)
}

func TestRouter_IdempotentReplay(t *testing.T) {
	a := newApp(t)
	userID := strings.Repeat("d", 32)
	require.NoError(t, a.users.Create(context.Background(), &user.User{UserID: userID, FullName: "Luis Gomez", DocumentNumber: "99"}))

	body, _ := json.Marshal(map[string]string{
		"user_id": userID, "cantity": "100", "entity": "Banco Dos", "bank_number_account": "1",
	})
	reqID := id.NewUploadID()
	first := a.do(t, stdhttp.MethodPost, "/loans", reqID, echo.MIMEApplicationJSON, body)
	require.Equal(t, stdhttp.StatusCreated, first.Code, first.Body.String())

	second := a.do(t, stdhttp.MethodPost, "/loans", reqID, echo.MIMEApplicationJSON, body)
	assert.Equal(t, stdhttp.StatusCreated, second.Code)
	assert.Equal(t, "true", second.Header().Get(middleware.HeaderReplay))
	assert.Equal(t, decodeLoan(t, first).LoanID, decodeLoan(t, second).LoanID)

	fresh := a.do(t, stdhttp.MethodPost, "/loans", "", echo.MIMEApplicationJSON, body)
	assert.Equal(t, stdhttp.StatusUnprocessableEntity, fresh.Code)
}

func TestRouter_UnknownLoanAndSlot(t *testing.T) {
	a := newApp(t)

	rec := a.json(t, stdhttp.MethodGet, "/loans/"+id.NewID32(), nil)
	assert.Equal(t, stdhttp.StatusNotFound, rec.Code)

	rec = a.file(t, stdhttp.MethodPut, "/loans/"+id.NewID32()+"/uploads/passport", pngBytes)
	assert.Equal(t, stdhttp.StatusBadRequest, rec.Code)

	rec = a.json(t, stdhttp.MethodPost, "/loans/"+id.NewID32()+"/documents", nil)
	assert.Equal(t, stdhttp.StatusNotFound, rec.Code)
}
