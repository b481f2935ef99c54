package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected slog.Level
		valid    bool
	}{
		{"debug", "debug", slog.LevelDebug, true},
		{"info", "info", slog.LevelInfo, true},
		{"warn", "warn", slog.LevelWarn, true},
		{"warning alias", "warning", slog.LevelWarn, true},
		{"error", "error", slog.LevelError, true},
		{"mixed case", "DeBuG", slog.LevelDebug, true},
		{"unknown falls back to info", "verbose", slog.LevelInfo, false},
		{"empty falls back to info", "", slog.LevelInfo, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			level, ok := ParseLevel(tc.input)
			assert.Equal(t, tc.expected, level)
			assert.Equal(t, tc.valid, ok)
		})
	}
}

func TestSetupWithWriter_EmitsJSON(t *testing.T) {
	var buf bytes.Buffer
	l := SetupWithWriter("info", &buf)
	require.NotNil(t, l)

	l.Info("hello", "component", "test")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "hello", record["msg"])
	assert.Equal(t, "test", record["component"])
}

func TestSetupWithWriter_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := SetupWithWriter("warn", &buf)

	l.Info("should be filtered")
	assert.Zero(t, buf.Len())

	l.Warn("should appear")
	assert.Contains(t, buf.String(), "should appear")
}
