package fund

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidAmount   = errors.New("invalid amount (must be > 0)")
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthenticated = errors.New("authentication required")
	ErrConflict        = errors.New("conflict")
	ErrCodeExhausted   = errors.New("unique code space exhausted after retries")
)

// ValidationError reports a missing or malformed input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// DeniedError is a Verification Gate denial. It matches ErrForbidden.
type DeniedError struct {
	Reason string
}

func (e *DeniedError) Error() string { return e.Reason }

func (e *DeniedError) Is(target error) bool { return target == ErrForbidden }
