package loan

import (
	"strings"

	"creditflow-backend/internal/domain/apperror"
)

// transitions is the full table of legal status changes. Approved is terminal
// here; disbursement sets markers without changing the status.
var transitions = map[Status][]Status{
	StatusDraft:   {StatusPending},
	StatusPending: {StatusApproved, StatusPostponed, StatusArchived},
}

func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// CheckTransition validates moving l to target with the given reason and
// returns the first rule that fails. It never mutates l.
func CheckTransition(l *Loan, target Status, reason string) error {
	if !CanTransition(l.Status, target) {
		return apperror.InvalidTransition(string(l.Status), string(target))
	}
	if l.NewCantityOpt {
		return apperror.AwaitingClientResponse(l.LoanID)
	}
	reason = strings.TrimSpace(reason)
	switch target {
	case StatusPending:
		if missing := l.MissingSlots(); len(missing) > 0 {
			names := make([]string, len(missing))
			for i, s := range missing {
				names[i] = string(s)
			}
			return apperror.PreconditionFailed("required documents missing: " + strings.Join(names, ", "))
		}
	case StatusApproved:
		if !l.HasSignature() {
			return apperror.PreconditionFailed("signature required")
		}
	case StatusPostponed:
		if reason == "" {
			return apperror.PreconditionFailed("postpone reason required")
		}
	case StatusArchived:
		if reason == "" {
			return apperror.PreconditionFailed("reasonReject required")
		}
	}
	return nil
}

// Apply moves l to target. Callers must run CheckTransition first.
func Apply(l *Loan, target Status, reason string, employeeID *string) {
	reason = strings.TrimSpace(reason)
	l.Status = target
	switch target {
	case StatusPostponed:
		l.ReasonPostpone = &reason
	case StatusArchived:
		l.ReasonReject = &reason
	}
	if employeeID != nil && *employeeID != "" {
		id := *employeeID
		l.EmployeeID = &id
	}
}
