package domain

import (
	"fmt"
	"strings"
)

// PrintRequest is the caller-submitted unit of work. It is immutable once
// accepted: the row slice it carries must not be mutated downstream.
type PrintRequest struct {
	TemplateName string `json:"template_name"`
	Data         []Row  `json:"data"`
	Copies       int    `json:"copies"`
}

// RequestLimits bounds the size of an accepted print request. The zero value
// for any limit disables that check.
type RequestLimits struct {
	MaxRowsPerJob   int
	MaxFieldsPerRow int
	MaxFieldLength  int
}

// Validate checks the request against structural invariants and the given
// limits. It returns one of the domain sentinel errors, wrapped with detail.
func (r *PrintRequest) Validate(limits RequestLimits) error {
	if !strings.HasSuffix(strings.ToLower(r.TemplateName), ".glabels") {
		return fmt.Errorf("%w: %q", ErrTemplateExtension, r.TemplateName)
	}

	if len(r.Data) == 0 {
		return ErrNoRows
	}

	if r.Copies < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidCopies, r.Copies)
	}

	if limits.MaxRowsPerJob > 0 && len(r.Data) > limits.MaxRowsPerJob {
		return fmt.Errorf("%w: %d rows, limit %d", ErrTooManyRows, len(r.Data), limits.MaxRowsPerJob)
	}

	for i, row := range r.Data {
		if limits.MaxFieldsPerRow > 0 && row.Len() > limits.MaxFieldsPerRow {
			return fmt.Errorf("%w: row %d has %d fields, limit %d",
				ErrTooManyFields, i, row.Len(), limits.MaxFieldsPerRow)
		}
		if limits.MaxFieldLength > 0 {
			for _, key := range row.Keys() {
				if len(row.StringValue(key)) > limits.MaxFieldLength {
					return fmt.Errorf("%w: row %d field %q exceeds %d characters",
						ErrFieldTooLong, i, key, limits.MaxFieldLength)
				}
			}
		}
	}

	return nil
}
