package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/jvillar/taskdeck-api/internal/domain"
	"github.com/jvillar/taskdeck-api/internal/service"
	"github.com/jvillar/taskdeck-api/internal/store"
)

// MapErrorToStatusCode translates the application's error taxonomy into
// HTTP status codes. Anything unrecognized lands on 500 so that new
// failure modes never pick a misleading status by accident.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, service.ErrTaskNotFound):
		return http.StatusNotFound

	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrEmptyTaskTitle),
		errors.Is(err, domain.ErrNegativeTaskID):
		return http.StatusBadRequest

	// The backend being down is an availability problem
	case errors.Is(err, store.ErrBackendUnavailable):
		return http.StatusServiceUnavailable

	// A backend nobody recognizes is an operator mistake, not an
	// availability blip
	case errors.Is(err, store.ErrUnknownBackend):
		return http.StatusInternalServerError

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns the client-facing message for an error.
// Raw error strings never reach the response body; whatever detail the
// error carries belongs in the logs.
func GetSafeErrorMessage(err error) string {
	switch {
	case err == nil:
		return "An unexpected error occurred"

	case errors.Is(err, service.ErrTaskNotFound):
		return "Task not found"

	case errors.Is(err, domain.ErrEmptyTaskTitle):
		return "Task title must not be empty"

	case errors.Is(err, domain.ErrNegativeTaskID):
		return "Task ID must be positive"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid task data"

	case errors.Is(err, store.ErrBackendUnavailable),
		errors.Is(err, store.ErrUnknownBackend):
		return "Storage backend unavailable"

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError condenses a validator error into a short
// client-facing message naming the first offending field. Anything that
// is not a validator error gets a generic message.
func SanitizeValidationError(err error) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return fmt.Sprintf("Invalid %s: %s", fe.Field(), validationTagMessage(fe.Tag()))
	}

	return "Validation error"
}

func validationTagMessage(tag string) string {
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
