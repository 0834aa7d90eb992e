package loan

import (
	"time"

	"gorm.io/gorm"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusPostponed Status = "postponed"
	StatusArchived  Status = "archived"
)

func ParseStatus(s string) (Status, bool) {
	switch st := Status(s); st {
	case StatusDraft, StatusPending, StatusApproved, StatusPostponed, StatusArchived:
		return st, true
	}
	return "", false
}

// NotDocumentable lists statuses that never receive generated documents.
var NotDocumentable = []Status{StatusDraft, StatusPending, StatusPostponed, StatusArchived}

type Loan struct {
	ID         uint64  `gorm:"primaryKey;column:id" json:"-"`
	LoanID     string  `gorm:"size:32;uniqueIndex:ux_loans_loan_id" json:"loan_id"`
	UserID     string  `gorm:"size:32;index:idx_loans_user" json:"user_id"`
	EmployeeID *string `gorm:"size:32" json:"employee_id,omitempty"`
	Status     Status  `gorm:"type:varchar(16);default:'draft';index:idx_loans_status" json:"status"`

	ReasonReject   *string `gorm:"type:text" json:"reason_reject,omitempty"`
	ReasonPostpone *string `gorm:"type:text" json:"reason_postpone,omitempty"`

	// Cantity is the requested amount as decimal text; immutable except through
	// an accepted counter-offer.
	Cantity             string  `gorm:"size:32" json:"cantity"`
	NewCantity          *string `gorm:"size:32" json:"new_cantity"`
	NewCantityOpt       bool    `gorm:"default:false" json:"new_cantity_opt"`
	ReasonChangeCantity *string `gorm:"type:text" json:"reason_change_cantity,omitempty"`

	Entity            string `gorm:"size:64" json:"entity"`
	BankNumberAccount string `gorm:"size:64" json:"bank_number_account"`

	Signature *string `gorm:"type:text" json:"signature,omitempty"`

	FirstFlyer      *string `gorm:"column:fisrt_flyer;type:text" json:"fisrt_flyer,omitempty"`
	UpIDFirstFlyer  *string `gorm:"column:upid_fisrt_flyer;size:36" json:"upid_fisrt_flyer,omitempty"`
	SecondFlyer     *string `gorm:"column:second_flyer;type:text" json:"second_flyer,omitempty"`
	UpIDSecondFlyer *string `gorm:"column:upid_second_flyer;size:36" json:"upid_second_flyer,omitempty"`
	ThirdFlyer      *string `gorm:"column:third_flyer;type:text" json:"third_flyer,omitempty"`
	UpIDThirdFlyer  *string `gorm:"column:upid_third_flyer;size:36" json:"upid_third_flyer,omitempty"`
	LaborCard       *string `gorm:"column:labor_card;type:text" json:"labor_card,omitempty"`
	UpIDLaborCard   *string `gorm:"column:upid_labor_card;size:36" json:"upid_labor_card,omitempty"`

	// Disbursement markers; both set means the loan was disbursed.
	Cycode      *string    `gorm:"size:64" json:"cycode,omitempty"`
	Extract     *string    `gorm:"type:text" json:"extract,omitempty"`
	DisbursedAt *time.Time `json:"disbursed_at,omitempty"`

	StatusUpdatedAt time.Time      `gorm:"autoCreateTime" json:"status_updated_at"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Loan) TableName() string { return "loans" }

func (l *Loan) IsDisbursed() bool { return l.Cycode != nil || l.Extract != nil }

// IsRejected reports the "rejected" flag that lives beside the status enum.
func (l *Loan) IsRejected() bool { return l.ReasonReject != nil && *l.ReasonReject != "" }

func (l *Loan) HasSignature() bool { return l.Signature != nil && *l.Signature != "" }

// MissingSlots returns the upload slots that are still empty.
func (l *Loan) MissingSlots() []Slot {
	var out []Slot
	for _, s := range Slots {
		if v, _ := l.slotFields(s); v == nil || *v == "" {
			out = append(out, s)
		}
	}
	return out
}
