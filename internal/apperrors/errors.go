package apperrors

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks missing or unacceptable user input.
	ErrValidation = errors.New("validation failed")

	// ErrProvider marks a failure talking to the completion service.
	ErrProvider = errors.New("completion provider error")

	// ErrMalformedResponse marks a provider response without usable text.
	ErrMalformedResponse = errors.New("malformed completion response")

	// ErrMalformedJSON marks model output that was expected to be JSON but was not.
	ErrMalformedJSON = errors.New("malformed json in model output")
)

// ValidationError describes a rejected user input field.
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

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Validation builds a ValidationError for field.
func Validation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// UserMessage returns the message safe to show to a caller. Only validation
// errors carry their detail; everything else collapses to fallback.
func UserMessage(err error, fallback string) string {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Message
	}
	return fallback
}
