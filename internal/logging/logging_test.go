package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), "parseLevel(%q)", in)
	}
}

func TestNew_ErrorIncludesStacktrace(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "INFO")

	logger.Error("storage failed", "error", "boom")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "storage failed", rec["msg"])
	st, ok := rec["stacktrace"].(string)
	require.True(t, ok, "expected stacktrace attribute")
	assert.True(t, strings.Contains(st, "goroutine"))
}

func TestNew_InfoHasNoStacktrace(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "INFO").With("component", "test")

	logger.Info("hello")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.NotContains(t, rec, "stacktrace")
	assert.Equal(t, "test", rec["component"])
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "WARN")

	logger.Info("dropped")
	assert.Zero(t, buf.Len())

	logger.Warn("kept")
	assert.NotZero(t, buf.Len())
}
