// Package filters turns raw query string parameters into typed, validated
// filter values for the dish and location queries.
package filters

import "fmt"

// ValidationError reports a user-correctable problem with one input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError builds a ValidationError with a formatted message.
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func invalid(field, format string, args ...any) *ValidationError {
	return NewValidationError(field, format, args...)
}
