package loan

import (
	"regexp"
	"strings"

	"creditflow-backend/internal/domain/apperror"
)

var reAmount = regexp.MustCompile(`^[1-9][0-9]{0,17}$`)

// CantityOffer is an employee counter-offer. Only NewCantityOffer builds a
// valid one, so an offer always has a positive integral amount and a reason.
type CantityOffer struct {
	amount string
	reason string
}

func NewCantityOffer(amount, reason string) (CantityOffer, error) {
	amount = strings.TrimSpace(amount)
	reason = strings.TrimSpace(reason)
	if !ValidAmount(amount) {
		return CantityOffer{}, apperror.InvalidInput("new cantity must be a positive whole number")
	}
	if reason == "" {
		return CantityOffer{}, apperror.InvalidInput("reason for changing cantity is required")
	}
	return CantityOffer{amount: amount, reason: reason}, nil
}

func (o CantityOffer) Amount() string { return o.amount }
func (o CantityOffer) Reason() string { return o.reason }

func ValidAmount(s string) bool { return reAmount.MatchString(s) }

// ProposeCantity opens a negotiation on a pending loan.
func ProposeCantity(l *Loan, offer CantityOffer, employeeID *string) error {
	if l.Status != StatusPending {
		return apperror.PreconditionFailed("cantity can only be renegotiated while pending")
	}
	if l.NewCantityOpt {
		return apperror.AwaitingClientResponse(l.LoanID)
	}
	if offer.amount == "" {
		return apperror.InvalidInput("empty cantity offer")
	}
	amount, reason := offer.amount, offer.reason
	l.NewCantity = &amount
	l.ReasonChangeCantity = &reason
	l.NewCantityOpt = true
	if employeeID != nil && *employeeID != "" {
		id := *employeeID
		l.EmployeeID = &id
	}
	return nil
}

// RespondCantity resolves an open negotiation. Accepting replaces Cantity;
// rejecting keeps it. Either way the loan stays pending.
func RespondCantity(l *Loan, accept bool) error {
	if !l.NewCantityOpt || l.NewCantity == nil {
		return apperror.PreconditionFailed("no cantity offer awaiting a response")
	}
	if accept {
		l.Cantity = *l.NewCantity
	}
	l.NewCantity = nil
	l.NewCantityOpt = false
	return nil
}
