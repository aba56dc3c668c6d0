package models

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned when a query fails validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrResourceMissing is returned when the corpus or embedding store is absent or inconsistent.
	ErrResourceMissing = errors.New("resource missing")
	// ErrExternalCall wraps a failed embedding, interpretation or generation call.
	ErrExternalCall = errors.New("external call failed")
)

// ValidationError represents a validation error on a named field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

// Unwrap lets errors.Is match ErrInvalidInput.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// ResourceError reports a missing or inconsistent startup resource.
func ResourceError(what string, err error) error {
	if err == nil {
		return fmt.Errorf("%w: %s", ErrResourceMissing, what)
	}
	return fmt.Errorf("%w: %s: %v", ErrResourceMissing, what, err)
}

// ExternalError wraps err as an external call failure for the named stage.
func ExternalError(stage string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %v", ErrExternalCall, stage, err)
}
