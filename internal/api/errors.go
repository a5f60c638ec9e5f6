package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/flashgen/internal/domain"
	"github.com/phrazzld/flashgen/internal/extract"
	"github.com/phrazzld/flashgen/internal/generation"
	"github.com/phrazzld/flashgen/internal/study"
)

// MsgSuperseded is returned when a generation result was discarded because a
// later action replaced it.
const MsgSuperseded = "This request was replaced by a newer one."

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// leaking internal error types to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, study.ErrInvalidSession):
		return http.StatusBadRequest

	case errors.Is(err, study.ErrSuperseded):
		return http.StatusConflict

	// Upstream model failures
	case errors.Is(err, study.ErrGenerationFailed),
		errors.Is(err, generation.ErrRequest),
		errors.Is(err, extract.ErrExtraction):
		return http.StatusBadGateway

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns the user-facing message for err.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, domain.ErrEmptyContent):
		return study.MsgEmptyInput
	case errors.Is(err, study.ErrInvalidSession):
		return "Invalid session"
	case errors.Is(err, study.ErrSuperseded):
		return MsgSuperseded
	case errors.Is(err, study.ErrGenerationFailed),
		errors.Is(err, generation.ErrRequest),
		errors.Is(err, extract.ErrExtraction):
		return study.MsgGenerationFailed
	case errors.Is(err, domain.ErrValidation):
		return "Invalid request"
	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError turns a validator error into a short message that
// names the first failing field.
func SanitizeValidationError(err error) string {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		fieldErr := validationErrs[0]
		return fmt.Sprintf("Invalid %s: %s", fieldErr.Field(), getValidationTagMessage(fieldErr.Tag()))
	}
	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}
