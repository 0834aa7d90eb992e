package document

import (
	"time"
)

// Type is one of the four legal documents generated for an approved loan.
type Type string

const (
	TypeAboutLoan                  Type = "about_loan"
	TypeInstructionLetter          Type = "instruction_letter"
	TypeSalaryPaymentAuthorization Type = "salary_payment_authorization"
	TypePromissoryNote             Type = "promissory_note"
)

// CanonicalTypes is the complete set, in generation order.
var CanonicalTypes = []Type{
	TypeAboutLoan,
	TypeInstructionLetter,
	TypeSalaryPaymentAuthorization,
	TypePromissoryNote,
}

// GeneratedDocument is one rendered artifact. The rows of one generation run
// share SetID and are committed together.
type GeneratedDocument struct {
	ID            uint64    `gorm:"primaryKey;column:id" json:"-"`
	LoanID        uint64    `gorm:"column:loan_id;not null;uniqueIndex:ux_generated_documents_loan_type" json:"-"`
	DocumentType  Type      `gorm:"column:document_type;type:varchar(40);not null;uniqueIndex:ux_generated_documents_loan_type" json:"document_type"`
	SetID         string    `gorm:"column:set_id;size:36;not null;index" json:"set_id"`
	UploadID      string    `gorm:"column:upload_id;size:36;not null" json:"upload_id"`
	StorageKey    string    `gorm:"column:storage_key;type:text;not null" json:"storage_key"`
	PublicURL     string    `gorm:"column:public_url;type:text;not null" json:"public_url"`
	FileType      string    `gorm:"column:file_type;size:64" json:"file_type"`
	DownloadCount int       `gorm:"column:download_count;default:0" json:"download_count"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (GeneratedDocument) TableName() string { return "generated_documents" }

// IsComplete reports whether docs hold every canonical type exactly once.
func IsComplete(docs []GeneratedDocument) bool {
	if len(docs) != len(CanonicalTypes) {
		return false
	}
	seen := make(map[Type]bool, len(docs))
	for _, d := range docs {
		seen[d.DocumentType] = true
	}
	for _, t := range CanonicalTypes {
		if !seen[t] {
			return false
		}
	}
	return true
}
