package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// It is usually reached through a *ValidationError.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")
)

// ValidationError describes a single invalid field. Its message is safe to
// show to API clients.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a ValidationError for the named field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Unwrap lets errors.Is(err, ErrValidation) match every ValidationError.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
