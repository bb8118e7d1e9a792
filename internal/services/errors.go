package services

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a business-rule failure so the HTTP layer can map it
// to a status code without string matching.
type ErrorKind string

const (
	KindAmbiguousOwnership ErrorKind = "ambiguous_ownership"
	KindEmptyCart          ErrorKind = "empty_cart"
	KindAddressNotFound    ErrorKind = "address_not_found"
	KindAddressMismatch    ErrorKind = "address_mismatch"
	KindCartItemInvalid    ErrorKind = "cart_item_invalid"
	KindNotFound           ErrorKind = "not_found"
	KindInvalidState       ErrorKind = "invalid_state"
	KindNoConfirmedPayment ErrorKind = "no_confirmed_payment"
	KindCircularReference  ErrorKind = "circular_reference"
	KindValidationFailed   ErrorKind = "validation_failed"
)

// Error is a typed business error. Validation and state failures are always
// returned as *Error; anything else escaping a service is a store failure.
type Error struct {
	Kind    ErrorKind
	Message string
	Details []string
	Err     error
}

func (e *Error) Error() string {
	if len(e.Details) > 0 {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, strings.Join(e.Details, "; "))
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// E builds a typed error with a formatted message.
func E(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err is a service error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var se *Error
	return errors.As(err, &se) && se.Kind == kind
}

// KindOf returns the kind of a service error, or "" for other errors.
func KindOf(err error) ErrorKind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}
