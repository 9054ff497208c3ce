// Package apperror defines the typed failures returned by workflow operations.
package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies a failure
type Kind string

const (
	KindValidation             Kind = "VALIDATION_ERROR"
	KindNotFound               Kind = "NOT_FOUND"
	KindForbidden              Kind = "FORBIDDEN"
	KindInvalidTransition      Kind = "INVALID_TRANSITION"
	KindAlreadyResolved        Kind = "ALREADY_RESOLVED"
	KindDuplicateQuote         Kind = "DUPLICATE_QUOTE"
	KindDuplicateInvoice       Kind = "DUPLICATE_INVOICE"
	KindOrganizationMismatch   Kind = "ORGANIZATION_MISMATCH"
	KindOrganizationMissing    Kind = "ORGANIZATION_MISSING"
	KindConcurrentModification Kind = "CONCURRENT_MODIFICATION"
	KindPersistence            Kind = "PERSISTENCE_FAILURE"
	KindNoItemsSelected        Kind = "NO_ITEMS_SELECTED"
	KindSupplierNotVerified    Kind = "SUPPLIER_NOT_VERIFIED"
	KindRequestNotAccepted     Kind = "REQUEST_NOT_ACCEPTED"
	KindSplitFailed            Kind = "SPLIT_FAILED"
)

// Error is a classified failure with the operation that produced it
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same kind, so sentinel-style comparisons work
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Op == "" && t.Message == ""
}

// New creates a failure of the given kind
func New(kind Kind, op, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies err; a nil err yields nil
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// IsKind reports whether err carries the given kind
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// Sentinels for errors.Is comparisons
var (
	ErrValidation             = &Error{Kind: KindValidation}
	ErrNotFound               = &Error{Kind: KindNotFound}
	ErrForbidden              = &Error{Kind: KindForbidden}
	ErrInvalidTransition      = &Error{Kind: KindInvalidTransition}
	ErrAlreadyResolved        = &Error{Kind: KindAlreadyResolved}
	ErrDuplicateQuote         = &Error{Kind: KindDuplicateQuote}
	ErrDuplicateInvoice       = &Error{Kind: KindDuplicateInvoice}
	ErrOrganizationMismatch   = &Error{Kind: KindOrganizationMismatch}
	ErrOrganizationMissing    = &Error{Kind: KindOrganizationMissing}
	ErrConcurrentModification = &Error{Kind: KindConcurrentModification}
	ErrPersistence            = &Error{Kind: KindPersistence}
	ErrNoItemsSelected        = &Error{Kind: KindNoItemsSelected}
	ErrSupplierNotVerified    = &Error{Kind: KindSupplierNotVerified}
	ErrRequestNotAccepted     = &Error{Kind: KindRequestNotAccepted}
	ErrSplitFailed            = &Error{Kind: KindSplitFailed}
)

// Validation builds a validation failure carrying per-field messages
func Validation(op string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Op: op, Message: "invalid input", Fields: fields}
}

// SplitFailure reports the zero-based group whose child could not be written
func SplitFailure(op string, group int, err error) *Error {
	return &Error{
		Kind:    KindSplitFailed,
		Op:      op,
		Message: fmt.Sprintf("group %d", group),
		Fields:  map[string]string{"group": fmt.Sprint(group)},
		Err:     err,
	}
}
