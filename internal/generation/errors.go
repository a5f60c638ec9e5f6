package generation

import (
	"errors"
	"fmt"
)

// Common errors returned by the generation package
var (
	// ErrRequest is matched by every RequestError: the text-generation service
	// could not be reached or answered with a failure.
	ErrRequest = errors.New("text generation request failed")

	// ErrContentBlocked is returned when the model refuses the content due to safety filters
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrEmptyPrompt is returned when a prompt is empty
	ErrEmptyPrompt = errors.New("prompt cannot be empty")

	// ErrInvalidConfig is returned when the client configuration is invalid
	ErrInvalidConfig = errors.New("invalid generation client configuration")
)

// RequestError wraps a transport or service failure reported by a Client.
type RequestError struct {
	// Provider names the backend that failed, e.g. "gemini" or "openai".
	Provider string
	// Cause is the underlying error.
	Cause error
}

// NewRequestError wraps cause as a RequestError for the given provider.
func NewRequestError(provider string, cause error) *RequestError {
	return &RequestError{Provider: provider, Cause: cause}
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	if e.Provider == "" {
		return fmt.Sprintf("%v: %v", ErrRequest, e.Cause)
	}
	return fmt.Sprintf("%s: %v: %v", e.Provider, ErrRequest, e.Cause)
}

// Unwrap exposes the underlying cause.
func (e *RequestError) Unwrap() error {
	return e.Cause
}

// Is makes every RequestError match ErrRequest.
func (e *RequestError) Is(target error) bool {
	return target == ErrRequest
}
