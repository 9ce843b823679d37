package models

import "fmt"

// ErrorKind is a machine-readable error category surfaced to API clients
type ErrorKind string

const (
	// Malformed input
	ErrorKindValidation    ErrorKind = "VALIDATION"
	ErrorKindInvalidPhone  ErrorKind = "INVALID_PHONE"
	ErrorKindInvalidAction ErrorKind = "INVALID_ACTION"

	// Business rule conflicts
	ErrorKindRaffleNotActive       ErrorKind = "RAFFLE_NOT_ACTIVE"
	ErrorKindAmountMismatch        ErrorKind = "AMOUNT_MISMATCH"
	ErrorKindCapacityExceeded      ErrorKind = "CAPACITY_EXCEEDED"
	ErrorKindDuplicatePayment      ErrorKind = "DUPLICATE_PAYMENT"
	ErrorKindNotEditable           ErrorKind = "NOT_EDITABLE"
	ErrorKindNotDeletable          ErrorKind = "NOT_DELETABLE"
	ErrorKindAlreadyProcessed      ErrorKind = "ALREADY_PROCESSED"
	ErrorKindAlreadyDrawn          ErrorKind = "ALREADY_DRAWN"
	ErrorKindDrawNotReady          ErrorKind = "DRAW_NOT_READY"
	ErrorKindNoValidParticipations ErrorKind = "NO_VALID_PARTICIPATIONS"

	// Caller identity
	ErrorKindUnauthorized ErrorKind = "UNAUTHORIZED"
	ErrorKindForbidden    ErrorKind = "FORBIDDEN"

	ErrorKindNotFound ErrorKind = "NOT_FOUND"
)

// Error is a domain error carrying a kind for errors.Is matching
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a domain error of the same kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// NewError creates a domain error with a formatted message
func NewError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

// WrapError creates a domain error that keeps the underlying cause
func WrapError(kind ErrorKind, cause error, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Sentinels for errors.Is checks. Only the kind is compared.
var (
	ErrValidation            = &Error{Kind: ErrorKindValidation}
	ErrInvalidPhone          = &Error{Kind: ErrorKindInvalidPhone}
	ErrInvalidAction         = &Error{Kind: ErrorKindInvalidAction}
	ErrRaffleNotActive       = &Error{Kind: ErrorKindRaffleNotActive}
	ErrAmountMismatch        = &Error{Kind: ErrorKindAmountMismatch}
	ErrCapacityExceeded      = &Error{Kind: ErrorKindCapacityExceeded}
	ErrDuplicatePayment      = &Error{Kind: ErrorKindDuplicatePayment}
	ErrNotEditable           = &Error{Kind: ErrorKindNotEditable}
	ErrNotDeletable          = &Error{Kind: ErrorKindNotDeletable}
	ErrAlreadyProcessed      = &Error{Kind: ErrorKindAlreadyProcessed}
	ErrAlreadyDrawn          = &Error{Kind: ErrorKindAlreadyDrawn}
	ErrDrawNotReady          = &Error{Kind: ErrorKindDrawNotReady}
	ErrNoValidParticipations = &Error{Kind: ErrorKindNoValidParticipations}
	ErrUnauthorized          = &Error{Kind: ErrorKindUnauthorized}
	ErrForbidden             = &Error{Kind: ErrorKindForbidden}
	ErrNotFound              = &Error{Kind: ErrorKindNotFound}
)
