package api

import (
	"errors"
	"net/http"

	"github.com/labelpress/labelpress/internal/domain"
	"github.com/labelpress/labelpress/internal/job"
	"github.com/labelpress/labelpress/internal/template"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes based on
// the error type. This keeps status decisions in one place and prevents
// leaking internal error types to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, job.ErrNotFound),
		errors.Is(err, template.ErrNotFound):
		return http.StatusNotFound

	// Request validation errors
	case errors.Is(err, domain.ErrNoRows),
		errors.Is(err, domain.ErrInvalidCopies),
		errors.Is(err, domain.ErrTemplateExtension),
		errors.Is(err, domain.ErrTooManyRows),
		errors.Is(err, domain.ErrTooManyFields),
		errors.Is(err, domain.ErrFieldTooLong),
		errors.Is(err, template.ErrInvalidName):
		return http.StatusUnprocessableEntity

	// Capacity errors
	case errors.Is(err, job.ErrQueueFull),
		errors.Is(err, job.ErrQueueClosed):
		return http.StatusServiceUnavailable

	// Lifecycle conflicts
	case errors.Is(err, job.ErrInvalidTransition):
		return http.StatusConflict

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message based
// on the error type. Validation errors are built from fixed sentinel text
// and safe to expose verbatim; anything unrecognized gets a generic message.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, job.ErrNotFound):
		return "Job not found"

	case errors.Is(err, template.ErrNotFound):
		return "Template not found"

	case errors.Is(err, domain.ErrNoRows),
		errors.Is(err, domain.ErrInvalidCopies),
		errors.Is(err, domain.ErrTemplateExtension),
		errors.Is(err, domain.ErrTooManyRows),
		errors.Is(err, domain.ErrTooManyFields),
		errors.Is(err, domain.ErrFieldTooLong),
		errors.Is(err, template.ErrInvalidName):
		return err.Error()

	case errors.Is(err, job.ErrQueueFull),
		errors.Is(err, job.ErrQueueClosed):
		return "Server is at capacity, try again later"

	case errors.Is(err, job.ErrInvalidTransition):
		return "Job is not in a state that allows this operation"

	default:
		return "An unexpected error occurred"
	}
}
