// Package domain defines the core business entities and errors.
package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when user input or a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrEmptyContent is returned when required content is empty.
	ErrEmptyContent = errors.New("content cannot be empty")
)

// ValidationError describes a single rejected field. It matches ErrValidation
// and its Cause with errors.Is.
type ValidationError struct {
	Field   string
	Message string
	Cause   error
}

// NewValidationError creates a ValidationError for the given field.
// A nil cause defaults to ErrValidation.
func NewValidationError(field, message string, cause error) *ValidationError {
	if cause == nil {
		cause = ErrValidation
	}
	return &ValidationError{Field: field, Message: message, Cause: cause}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// Unwrap exposes the underlying cause.
func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is ErrValidation, so every ValidationError can be
// classified without knowing its cause.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
