package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"creditflow-backend/internal/adapter/middleware"
	"creditflow-backend/internal/infrastructure/logger"
	"creditflow-backend/internal/usecase/disbursement"
	"creditflow-backend/internal/usecase/loan"
	"creditflow-backend/internal/usecase/transition"
)

type LoanHandler struct {
	loans       *loan.Usecase
	transitions *transition.Usecase
	disburse    *disbursement.Usecase
	log         logger.Logger
}

func NewLoanHandler(loans *loan.Usecase, transitions *transition.Usecase, disburse *disbursement.Usecase, log logger.Logger) *LoanHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &LoanHandler{loans: loans, transitions: transitions, disburse: disburse, log: log}
}

type createLoanReq struct {
	UserID            string `json:"user_id" validate:"required,hex32"`
	Cantity           string `json:"cantity" validate:"required,amount"`
	Entity            string `json:"entity" validate:"required,max=64"`
	BankNumberAccount string `json:"bank_number_account" validate:"required,max=64"`
}

func (h *LoanHandler) CreateLoan(c echo.Context) error {
	var req createLoanReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.loans.Create(c.Request().Context(), loan.CreateLoanInput(req))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *LoanHandler) GetLoan(c echo.Context) error {
	dto, err := h.loans.Get(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

type changeStatusReq struct {
	Status string `json:"status" validate:"required,oneof=draft pending approved postponed archived"`
	Reason string `json:"reason"`
}

func (h *LoanHandler) ChangeStatus(c echo.Context) error {
	var req changeStatusReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.transitions.Transition(c.Request().Context(), transition.TransitionInput{
		LoanID:     c.Param("loan_id"),
		Status:     req.Status,
		Reason:     req.Reason,
		EmployeeID: middleware.ActorID(c),
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

type proposeCantityReq struct {
	NewCantity string `json:"new_cantity" validate:"required,amount"`
	Reason     string `json:"reason_change_cantity" validate:"required"`
}

func (h *LoanHandler) ProposeCantity(c echo.Context) error {
	var req proposeCantityReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.transitions.ProposeCantity(c.Request().Context(), transition.ProposeCantityInput{
		LoanID:     c.Param("loan_id"),
		NewCantity: req.NewCantity,
		Reason:     req.Reason,
		EmployeeID: middleware.ActorID(c),
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

type respondCantityReq struct {
	Accept *bool `json:"accept" validate:"required"`
}

func (h *LoanHandler) RespondCantity(c echo.Context) error {
	var req respondCantityReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.transitions.RespondCantity(c.Request().Context(), transition.RespondCantityInput{
		LoanID: c.Param("loan_id"),
		Accept: req.Accept,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

type disburseReq struct {
	Cycode  string `json:"cycode" validate:"required,max=64"`
	Extract string `json:"extract" validate:"required"`
}

func (h *LoanHandler) Disburse(c echo.Context) error {
	var req disburseReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.disburse.Disburse(c.Request().Context(), disbursement.DisburseInput{
		LoanID:  c.Param("loan_id"),
		Cycode:  req.Cycode,
		Extract: req.Extract,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}
