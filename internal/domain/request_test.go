package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func validRequest() PrintRequest {
	return PrintRequest{
		TemplateName: "demo.glabels",
		Data: []Row{
			NewRow("ITEM", "A001", "CODE", "X123"),
			NewRow("ITEM", "A002", "CODE", "X124"),
		},
		Copies: 1,
	}
}

func TestPrintRequestValidate(t *testing.T) {
	limits := RequestLimits{
		MaxRowsPerJob:   100,
		MaxFieldsPerRow: 10,
		MaxFieldLength:  64,
	}

	t.Run("valid request", func(t *testing.T) {
		req := validRequest()
		assert.NoError(t, req.Validate(limits))
	})

	t.Run("uppercase extension accepted", func(t *testing.T) {
		req := validRequest()
		req.TemplateName = "DEMO.GLABELS"
		assert.NoError(t, req.Validate(limits))
	})

	t.Run("wrong extension", func(t *testing.T) {
		req := validRequest()
		req.TemplateName = "demo.txt"
		assert.ErrorIs(t, req.Validate(limits), ErrTemplateExtension)
	})

	t.Run("no rows", func(t *testing.T) {
		req := validRequest()
		req.Data = nil
		assert.ErrorIs(t, req.Validate(limits), ErrNoRows)
	})

	t.Run("zero copies", func(t *testing.T) {
		req := validRequest()
		req.Copies = 0
		assert.ErrorIs(t, req.Validate(limits), ErrInvalidCopies)
	})

	t.Run("too many rows", func(t *testing.T) {
		req := validRequest()
		for i := 0; i < 100; i++ {
			req.Data = append(req.Data, NewRow("ITEM", "x"))
		}
		assert.ErrorIs(t, req.Validate(limits), ErrTooManyRows)
	})

	t.Run("too many fields", func(t *testing.T) {
		pairs := make([]any, 0, 22)
		for _, k := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k"} {
			pairs = append(pairs, k, "v")
		}
		req := validRequest()
		req.Data = []Row{NewRow(pairs...)}
		assert.ErrorIs(t, req.Validate(limits), ErrTooManyFields)
	})

	t.Run("field too long", func(t *testing.T) {
		req := validRequest()
		req.Data = []Row{NewRow("ITEM", strings.Repeat("x", 65))}
		assert.ErrorIs(t, req.Validate(limits), ErrFieldTooLong)
	})

	t.Run("zero limits disable checks", func(t *testing.T) {
		req := validRequest()
		req.Data = []Row{NewRow("ITEM", strings.Repeat("x", 100000))}
		assert.NoError(t, req.Validate(RequestLimits{}))
	})
}

func TestJobStatusTerminal(t *testing.T) {
	assert.False(t, JobStatusPending.Terminal())
	assert.False(t, JobStatusRunning.Terminal())
	assert.True(t, JobStatusDone.Terminal())
	assert.True(t, JobStatusFailed.Terminal())
}
