package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the domain layer.
var (
	ErrNotFound         = errors.New("domain: not found")
	ErrConflict         = errors.New("domain: conflict")
	ErrUnauthenticated  = errors.New("domain: unauthenticated")
	ErrForbidden        = errors.New("domain: forbidden")
	ErrValidation       = errors.New("domain: validation failed")
	ErrInvalidReference = errors.New("domain: invalid reference")

	// ErrAlreadySettled is returned when a receipt is issued for an invoice
	// that is no longer Unpaid. It matches ErrConflict with errors.Is.
	ErrAlreadySettled = fmt.Errorf("invoice already settled: %w", ErrConflict)
)

// ValidationError describes a single rejected field. It matches
// ErrValidation with errors.Is.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + " " + e.Reason
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Invalid returns a *ValidationError for field.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
