package http

import (
	"context"
	"encoding/json"
	"errors"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"creditflow-backend/internal/domain/apperror"
	domain "creditflow-backend/internal/domain/loan"
	"creditflow-backend/internal/domain/uow"
	"creditflow-backend/internal/domain/user"
	"creditflow-backend/internal/infrastructure/logger"
	"creditflow-backend/internal/testutil/loanmock"
	"creditflow-backend/internal/testutil/uowmock"
	"creditflow-backend/internal/testutil/usermock"
	"creditflow-backend/internal/usecase/disbursement"
	uc "creditflow-backend/internal/usecase/loan"
	"creditflow-backend/internal/usecase/transition"
)

func newEchoWithValidator() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

type logEntry struct {
	level, msg string
	fields     map[string]any
}

type recordingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (r *recordingLogger) add(level, msg string, f map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, logEntry{level, msg, f})
}
func (r *recordingLogger) Debug(msg string, f map[string]any) { r.add("debug", msg, f) }
func (r *recordingLogger) Info(msg string, f map[string]any)  { r.add("info", msg, f) }
func (r *recordingLogger) Warn(msg string, f map[string]any)  { r.add("warn", msg, f) }
func (r *recordingLogger) Error(msg string, f map[string]any) { r.add("error", msg, f) }
func (r *recordingLogger) With(map[string]any) logger.Logger  { return r }

func newLoanHandler(t *testing.T, repo *loanmock.Repo) *LoanHandler {
	return newLoanHandlerWithLog(t, repo, logger.NewTest(t))
}

func newLoanHandlerWithLog(t *testing.T, repo *loanmock.Repo, log logger.Logger) *LoanHandler {
	users := &usermock.Repo{GetByUserIDFn: func(_ context.Context, id string) (*user.User, error) {
		return &user.User{UserID: id}, nil
	}}
	tx := uowmock.Passthrough(uow.Repos{Loans: repo})
	return NewLoanHandler(
		uc.NewUsecase(repo, users, log),
		transition.NewUsecase(tx, nil, log, transition.Config{}),
		disbursement.NewUsecase(tx, nil, log, disbursement.Config{}),
		log,
	)
}

func call(e *echo.Echo, method, path, body string, names, values []string, fn echo.HandlerFunc) (*httptest.ResponseRecorder, error) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("Ax-Actor-Id", "EMP-7")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames(names...)
	c.SetParamValues(values...)
	return rec, fn(c)
}

func TestCreateLoan_Success(t *testing.T) {
	repo := &loanmock.Repo{
		GetOpenLoanByUserIDFn: func(context.Context, string) (*domain.Loan, error) { return nil, apperror.NotFound("open loan") },
	}
	h := newLoanHandler(t, repo)
	e := newEchoWithValidator()

	body, _ := json.Marshal(map[string]any{
		"user_id":             strings.Repeat("b", 32),
		"cantity":             "5000000",
		"entity":              "Banco Uno",
		"bank_number_account": "000123",
	})
	rec, err := call(e, stdhttp.MethodPost, "/loans", string(body), nil, nil, h.CreateLoan)
	require.NoError(t, err)
	assert.Equal(t, stdhttp.StatusCreated, rec.Code)

	var got uc.LoanDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "draft", got.Status)
	assert.Equal(t, "5000000", got.Cantity)
}

func TestCreateLoan_BindAndValidationErrors(t *testing.T) {
	h := newLoanHandler(t, &loanmock.Repo{})
	e := newEchoWithValidator()

	rec, err := call(e, stdhttp.MethodPost, "/loans", "{not json", nil, nil, h.CreateLoan)
	require.NoError(t, err)
	assert.Equal(t, stdhttp.StatusBadRequest, rec.Code)

	rec, err = call(e, stdhttp.MethodPost, "/loans", `{"user_id":"x","cantity":"1.5"}`, nil, nil, h.CreateLoan)
	require.NoError(t, err)
	assert.Equal(t, stdhttp.StatusUnprocessableEntity, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, containsFieldMsg(resp.Details, "UserID", "32-char"))
	assert.True(t, containsFieldMsg(resp.Details, "Cantity", "positive whole number"))
	assert.True(t, containsFieldMsg(resp.Details, "Entity", "is required"))
}

func TestCreateLoan_OpenLoanConflict(t *testing.T) {
	repo := &loanmock.Repo{
		GetOpenLoanByUserIDFn: func(context.Context, string) (*domain.Loan, error) {
			return &domain.Loan{LoanID: "L-open"}, nil
		},
	}
	h := newLoanHandler(t, repo)
	body := `{"user_id":"` + strings.Repeat("b", 32) + `","cantity":"100","entity":"b","bank_number_account":"1"}`
	rec, err := call(newEchoWithValidator(), stdhttp.MethodPost, "/loans", body, nil, nil, h.CreateLoan)
	require.NoError(t, err)
	assert.Equal(t, stdhttp.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "PRECONDITION_FAILED")
}

func TestGetLoan(t *testing.T) {
	repo := &loanmock.Repo{GetByLoanIDFn: func(_ context.Context, id string) (*domain.Loan, error) {
		if id == "L1" {
			return &domain.Loan{LoanID: "L1", Status: domain.StatusPending}, nil
		}
		return nil, apperror.NotFound("loan " + id)
	}}
	h := newLoanHandler(t, repo)
	e := newEchoWithValidator()

	rec, err := call(e, stdhttp.MethodGet, "/loans/L1", "", []string{"loan_id"}, []string{"L1"}, h.GetLoan)
	require.NoError(t, err)
	assert.Equal(t, stdhttp.StatusOK, rec.Code)

	rec, err = call(e, stdhttp.MethodGet, "/loans/L2", "", []string{"loan_id"}, []string{"L2"}, h.GetLoan)
	require.NoError(t, err)
	assert.Equal(t, stdhttp.StatusNotFound, rec.Code)
}

func TestChangeStatus_MapsDomainErrors(t *testing.T) {
	stored := domain.Loan{LoanID: "L1", Status: domain.StatusApproved}
	var saved *domain.Loan
	repo := &loanmock.Repo{
		GetByLoanIDForUpdateFn: func(context.Context, string) (*domain.Loan, error) { cp := stored; return &cp, nil },
		SaveFn:                 func(_ context.Context, l *domain.Loan) error { saved = l; return nil },
	}
	h := newLoanHandler(t, repo)
	e := newEchoWithValidator()
	p, v := []string{"loan_id"}, []string{"L1"}

	rec, err := call(e, stdhttp.MethodPost, "/loans/L1/status", `{"status":"pending"}`, p, v, h.ChangeStatus)
	require.NoError(t, err)
	assert.Equal(t, stdhttp.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_TRANSITION")

	stored.Status = domain.StatusPending
	rec, err = call(e, stdhttp.MethodPost, "/loans/L1/status", `{"status":"approved"}`, p, v, h.ChangeStatus)
	require.NoError(t, err)
	assert.Equal(t, stdhttp.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "signature required")

	rec, err = call(e, stdhttp.MethodPost, "/loans/L1/status", `{"status":"archived","reason":"fraud"}`, p, v, h.ChangeStatus)
	require.NoError(t, err)
	assert.Equal(t, stdhttp.StatusOK, rec.Code)
	require.NotNil(t, saved)
	require.NotNil(t, saved.EmployeeID)
	assert.Equal(t, "EMP-7", *saved.EmployeeID)
}

func TestCantityRoutes(t *testing.T) {
	stored := domain.Loan{LoanID: "L1", Status: domain.StatusPending, Cantity: "1000000"}
	repo := &loanmock.Repo{
		GetByLoanIDForUpdateFn: func(context.Context, string) (*domain.Loan, error) { cp := stored; return &cp, nil },
		SaveFn:                 func(_ context.Context, l *domain.Loan) error { stored = *l; return nil },
	}
	h := newLoanHandler(t, repo)
	e := newEchoWithValidator()
	p, v := []string{"loan_id"}, []string{"L1"}

	rec, err := call(e, stdhttp.MethodPost, "/loans/L1/cantity", `{"new_cantity":"1200000","reason_change_cantity":"income verified"}`, p, v, h.ProposeCantity)
	require.NoError(t, err)
	assert.Equal(t, stdhttp.StatusOK, rec.Code)

	rec, err = call(e, stdhttp.MethodPost, "/loans/L1/status", `{"status":"archived","reason":"x"}`, p, v, h.ChangeStatus)
	require.NoError(t, err)
	assert.Equal(t, stdhttp.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "AWAITING_CLIENT_RESPONSE")

	rec, err = call(e, stdhttp.MethodPost, "/loans/L1/cantity/response", `{}`, p, v, h.RespondCantity)
	require.NoError(t, err)
	assert.Equal(t, stdhttp.StatusUnprocessableEntity, rec.Code)

	rec, err = call(e, stdhttp.MethodPost, "/loans/L1/cantity/response", `{"accept":true}`, p, v, h.RespondCantity)
	require.NoError(t, err)
	assert.Equal(t, stdhttp.StatusOK, rec.Code)
	assert.Equal(t, "1200000", stored.Cantity)
}

func TestDisburse_InternalErrorHidden(t *testing.T) {
	repo := &loanmock.Repo{
		GetByLoanIDForUpdateFn: func(context.Context, string) (*domain.Loan, error) { return nil, errors.New("db down") },
	}
	rl := &recordingLogger{}
	h := newLoanHandlerWithLog(t, repo, rl)
	rec, err := call(newEchoWithValidator(), stdhttp.MethodPost, "/loans/L1/disbursement", `{"cycode":"c","extract":"e"}`,
		[]string{"loan_id"}, []string{"L1"}, h.Disburse)
	require.NoError(t, err)
	assert.Equal(t, stdhttp.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "db down")

	var logged *logEntry
	for i := range rl.entries {
		if rl.entries[i].level == "error" {
			logged = &rl.entries[i]
		}
	}
	require.NotNil(t, logged, "internal error not logged")
	assert.Equal(t, stdhttp.MethodPost, logged.fields["method"])
	assert.EqualError(t, logged.fields["error"].(error), "db down")
}

func TestDomainErrorsAreNotLoggedAsErrors(t *testing.T) {
	repo := &loanmock.Repo{GetByLoanIDFn: func(_ context.Context, id string) (*domain.Loan, error) {
		return nil, apperror.NotFound("loan " + id)
	}}
	rl := &recordingLogger{}
	h := newLoanHandlerWithLog(t, repo, rl)
	rec, err := call(newEchoWithValidator(), stdhttp.MethodGet, "/loans/L9", "", []string{"loan_id"}, []string{"L9"}, h.GetLoan)
	require.NoError(t, err)
	assert.Equal(t, stdhttp.StatusNotFound, rec.Code)
	for _, e := range rl.entries {
		assert.NotEqual(t, "error", e.level)
	}
}
