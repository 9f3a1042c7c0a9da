package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestStructuredLogger_JSONEntry(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger("konservasi-api", "1.0.0", InfoLevel)
	logger.SetOutput(&buf)

	ctx := WithRequestID(context.Background(), "req-123")
	logger.Info(ctx, "[TEST] hello", Fields{"area_id": 7})

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	entry := lines[0]

	assert.Equal(t, "[TEST] hello", entry["message"])
	assert.Equal(t, "konservasi-api", entry["service"])
	assert.Equal(t, "1.0.0", entry["version"])
	assert.Equal(t, "req-123", entry["request_id"])

	fields, ok := entry["fields"].(map[string]interface{})
	require.True(t, ok)
	assert.EqualValues(t, 7, fields["area_id"])
}

func TestStructuredLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger("svc", "1", WarnLevel)
	logger.SetOutput(&buf)

	logger.Debug(context.Background(), "debug", nil)
	logger.Info(context.Background(), "info", nil)
	logger.Warn(context.Background(), "warn", nil)
	logger.Error(context.Background(), "error", nil, errors.New("boom"))

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "warn", lines[0]["message"])
	assert.Equal(t, "boom", lines[1]["error"])

	buf.Reset()
	logger.SetLevel(DebugLevel)
	logger.Debug(context.Background(), "debug", nil)
	assert.Len(t, decodeLines(t, &buf), 1)
}

func TestContextLogger_MergesFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger("svc", "1", DebugLevel)
	logger.SetOutput(&buf)

	cl := logger.WithFields(Fields{"component": "import", "batch": 1})
	cl.Info(context.Background(), "merged", Fields{"batch": 2})

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	fields := lines[0]["fields"].(map[string]interface{})
	assert.Equal(t, "import", fields["component"])
	assert.EqualValues(t, 2, fields["batch"])
}

func TestParseLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":   DebugLevel,
		"INFO":    InfoLevel,
		"warning": WarnLevel,
		"error":   ErrorLevel,
		"bogus":   InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
	assert.Equal(t, "WARN", WarnLevel.String())
}
