// Package apperror holds the typed business failures returned by the loan
// use cases. Infrastructure faults are not wrapped here; they propagate as
// ordinary wrapped errors.
package apperror

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindInvalidTransition      Kind = "INVALID_TRANSITION"
	KindPreconditionFailed     Kind = "PRECONDITION_FAILED"
	KindAwaitingClientResponse Kind = "AWAITING_CLIENT_RESPONSE"
	KindNotFound               Kind = "NOT_FOUND"
	KindUploadFailed           Kind = "UPLOAD_FAILED"
	KindAlreadyDisbursed       Kind = "ALREADY_DISBURSED"
	KindInvalidInput           Kind = "INVALID_INPUT"
)

// Error is a business failure of a known kind.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so the sentinels below work with
// errors.Is regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrInvalidTransition      = &Error{Kind: KindInvalidTransition}
	ErrPreconditionFailed     = &Error{Kind: KindPreconditionFailed}
	ErrAwaitingClientResponse = &Error{Kind: KindAwaitingClientResponse}
	ErrNotFound               = &Error{Kind: KindNotFound}
	ErrUploadFailed           = &Error{Kind: KindUploadFailed}
	ErrAlreadyDisbursed       = &Error{Kind: KindAlreadyDisbursed}
	ErrInvalidInput           = &Error{Kind: KindInvalidInput}
)

func InvalidTransition(from, to string) *Error {
	return &Error{Kind: KindInvalidTransition, Message: fmt.Sprintf("cannot move from %s to %s", from, to)}
}

func PreconditionFailed(msg string) *Error {
	return &Error{Kind: KindPreconditionFailed, Message: msg}
}

func AwaitingClientResponse(loanID string) *Error {
	return &Error{Kind: KindAwaitingClientResponse, Message: fmt.Sprintf("loan %s is waiting for the client to answer a cantity offer", loanID)}
}

func NotFound(what string) *Error {
	return &Error{Kind: KindNotFound, Message: what + " not found"}
}

func UploadFailed(key string, attempts int, last error) *Error {
	return &Error{Kind: KindUploadFailed, Message: fmt.Sprintf("upload %s failed after %d attempts", key, attempts), Err: last}
}

func AlreadyDisbursed(loanID string) *Error {
	return &Error{Kind: KindAlreadyDisbursed, Message: fmt.Sprintf("loan %s already disbursed", loanID)}
}

func InvalidInput(msg string) *Error {
	return &Error{Kind: KindInvalidInput, Message: msg}
}

// KindOf returns the kind of err, or "" when err is not a business failure.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
