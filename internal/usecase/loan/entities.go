package loan

import (
	"time"

	domain "creditflow-backend/internal/domain/loan"
)

type CreateLoanInput struct {
	UserID            string `json:"user_id" validate:"required,len=32"`
	Cantity           string `json:"cantity" validate:"required"`
	Entity            string `json:"entity" validate:"required"`
	BankNumberAccount string `json:"bank_number_account" validate:"required"`
}

type SlotDTO struct {
	Locator string `json:"locator,omitempty"`
	UpID    string `json:"upid,omitempty"`
}

type LoanDTO struct {
	LoanID              string             `json:"loan_id"`
	UserID              string             `json:"user_id"`
	EmployeeID          string             `json:"employee_id,omitempty"`
	Status              string             `json:"status"`
	Rejected            bool               `json:"rejected"`
	Disbursed           bool               `json:"disbursed"`
	ReasonReject        string             `json:"reason_reject,omitempty"`
	ReasonPostpone      string             `json:"reason_postpone,omitempty"`
	Cantity             string             `json:"cantity"`
	NewCantity          string             `json:"new_cantity,omitempty"`
	NewCantityOpt       bool               `json:"new_cantity_opt"`
	ReasonChangeCantity string             `json:"reason_change_cantity,omitempty"`
	Entity              string             `json:"entity"`
	BankNumberAccount   string             `json:"bank_number_account"`
	Signature           string             `json:"signature,omitempty"`
	Uploads             map[string]SlotDTO `json:"uploads"`
	Cycode              string             `json:"cycode,omitempty"`
	Extract             string             `json:"extract,omitempty"`
	DisbursedAt         *time.Time         `json:"disbursed_at,omitempty"`
	StatusUpdatedAt     time.Time          `json:"status_updated_at"`
	CreatedAt           time.Time          `json:"created_at"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func ToDTO(l *domain.Loan) *LoanDTO {
	uploads := make(map[string]SlotDTO, len(domain.Slots))
	for _, s := range domain.Slots {
		loc, up := l.SlotLocator(s)
		uploads[string(s)] = SlotDTO{Locator: loc, UpID: up}
	}
	return &LoanDTO{
		LoanID:              l.LoanID,
		UserID:              l.UserID,
		EmployeeID:          deref(l.EmployeeID),
		Status:              string(l.Status),
		Rejected:            l.IsRejected(),
		Disbursed:           l.IsDisbursed(),
		ReasonReject:        deref(l.ReasonReject),
		ReasonPostpone:      deref(l.ReasonPostpone),
		Cantity:             l.Cantity,
		NewCantity:          deref(l.NewCantity),
		NewCantityOpt:       l.NewCantityOpt,
		ReasonChangeCantity: deref(l.ReasonChangeCantity),
		Entity:              l.Entity,
		BankNumberAccount:   l.BankNumberAccount,
		Signature:           deref(l.Signature),
		Uploads:             uploads,
		Cycode:              deref(l.Cycode),
		Extract:             deref(l.Extract),
		DisbursedAt:         l.DisbursedAt,
		StatusUpdatedAt:     l.StatusUpdatedAt,
		CreatedAt:           l.CreatedAt,
	}
}
