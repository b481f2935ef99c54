package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrNoRows is returned when a print request contains no label rows.
	ErrNoRows = errors.New("print request has no label rows")

	// ErrInvalidCopies is returned when the copies count is below one.
	ErrInvalidCopies = errors.New("copies must be at least 1")

	// ErrTemplateExtension is returned when a template name does not end
	// with the .glabels extension.
	ErrTemplateExtension = errors.New("template name must have .glabels extension")

	// ErrTooManyRows is returned when a request exceeds the configured
	// per-job row limit.
	ErrTooManyRows = errors.New("too many label rows in request")

	// ErrTooManyFields is returned when a single row exceeds the configured
	// field-count limit.
	ErrTooManyFields = errors.New("too many fields in label row")

	// ErrFieldTooLong is returned when a field value exceeds the configured
	// length limit.
	ErrFieldTooLong = errors.New("field value too long")
)
