package domain

import "errors"

// Sentinel errors for the domain layer.
var (
	ErrNotFound     = errors.New("domain: not found")
	ErrConflict     = errors.New("domain: conflict")
	ErrUnauthorized = errors.New("domain: unauthorized")
	ErrForbidden    = errors.New("domain: forbidden")
	ErrValidation   = errors.New("domain: validation failed")
)

// ValidationError describes malformed caller input. Message is safe to show
// to the caller verbatim.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is reports ErrValidation so callers can match without errors.As.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}
