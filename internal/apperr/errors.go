// Package apperr defines the error taxonomy shared across layers.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an identifier does not resolve to a record.
	ErrNotFound = errors.New("not found")
	// ErrInvalidID is returned for malformed document identifiers.
	ErrInvalidID = errors.New("invalid identifier")
)

// ValidationError reports a domain-rule violation that maps to a 400
// response. Distinct from ozzo's validation.Errors, which covers
// request-shape checks at the API boundary.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// Validationf builds a ValidationError with a formatted reason.
func Validationf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
