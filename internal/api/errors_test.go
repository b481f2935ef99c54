package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/labelpress/labelpress/internal/domain"
	"github.com/labelpress/labelpress/internal/job"
	"github.com/labelpress/labelpress/internal/template"
)

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"job not found", job.ErrNotFound, http.StatusNotFound},
		{"template not found", template.ErrNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("lookup: %w", job.ErrNotFound), http.StatusNotFound},
		{"no rows", domain.ErrNoRows, http.StatusUnprocessableEntity},
		{"invalid copies", domain.ErrInvalidCopies, http.StatusUnprocessableEntity},
		{"bad extension", domain.ErrTemplateExtension, http.StatusUnprocessableEntity},
		{"too many rows", domain.ErrTooManyRows, http.StatusUnprocessableEntity},
		{"too many fields", domain.ErrTooManyFields, http.StatusUnprocessableEntity},
		{"field too long", domain.ErrFieldTooLong, http.StatusUnprocessableEntity},
		{"invalid template name", template.ErrInvalidName, http.StatusUnprocessableEntity},
		{"queue full", job.ErrQueueFull, http.StatusServiceUnavailable},
		{"queue closed", job.ErrQueueClosed, http.StatusServiceUnavailable},
		{"invalid transition", job.ErrInvalidTransition, http.StatusConflict},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
		{"nil", nil, http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, MapErrorToStatusCode(tc.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Run("validation errors pass through", func(t *testing.T) {
		err := fmt.Errorf("%w: got 0", domain.ErrInvalidCopies)
		assert.Equal(t, err.Error(), GetSafeErrorMessage(err))
	})

	t.Run("unknown errors are sanitized", func(t *testing.T) {
		err := errors.New("open /var/lib/secret: permission denied")
		msg := GetSafeErrorMessage(err)
		assert.Equal(t, "An unexpected error occurred", msg)
	})

	t.Run("nil", func(t *testing.T) {
		assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(nil))
	})

	t.Run("capacity", func(t *testing.T) {
		assert.Contains(t, GetSafeErrorMessage(job.ErrQueueFull), "capacity")
	})
}
