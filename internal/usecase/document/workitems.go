package document

import (
	"path"
	"time"

	"creditflow-backend/internal/domain/document"
	"creditflow-backend/internal/domain/loan"
	"creditflow-backend/internal/domain/user"
	"creditflow-backend/internal/infrastructure/render"
)

type workItem struct {
	kind   document.Type
	key    string
	fields render.Fields
}

// StorageKey is stable per loan and kind, so a retried run overwrites the
// objects of a failed one.
func StorageKey(loanID string, kind document.Type, ext string) string {
	return path.Join("documents", loanID, string(kind)+"."+ext)
}

// buildWorkItems returns exactly one item per canonical document kind.
func buildWorkItems(l *loan.Loan, u *user.User, ext string, now time.Time) []workItem {
	base := render.Fields{
		LoanID:         l.LoanID,
		FullName:       u.FullName,
		DocumentNumber: u.DocumentNumber,
		SignatureURL:   *l.Signature,
		Cantity:        l.Cantity,
		IssuedAt:       now,
	}
	items := make([]workItem, 0, len(document.CanonicalTypes))
	for _, kind := range document.CanonicalTypes {
		f := base
		if kind == document.TypeAboutLoan {
			f.Entity = l.Entity
			f.BankNumberAccount = l.BankNumberAccount
		}
		items = append(items, workItem{kind: kind, key: StorageKey(l.LoanID, kind, ext), fields: f})
	}
	return items
}
