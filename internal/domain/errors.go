package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when input or a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrEmptyContent is returned when required content is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrContentTooLong is returned when content exceeds its length limit.
	ErrContentTooLong = errors.New("content too long")
)

// ValidationError describes a single invalid field. It wraps a sentinel so
// callers can match it with errors.Is, and always matches ErrValidation.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError creates a ValidationError for field. A nil cause
// defaults to ErrValidation.
func NewValidationError(field, message string, cause error) *ValidationError {
	if cause == nil {
		cause = ErrValidation
	}
	return &ValidationError{Field: field, Message: message, Err: cause}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Is makes every ValidationError match ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
