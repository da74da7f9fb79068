package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DefaultConfig(t *testing.T) {
	t.Parallel()

	assert.NotNil(t, New(nil))
}

func TestNew_JSONOutput(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(&Config{Output: &buf, Level: slog.LevelInfo})
	logger.Info("test message", "key", "value")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Contains(t, entry, "ts")
	assert.NotContains(t, entry, "time")
	assert.Contains(t, entry, "level")
	assert.Equal(t, "test message", entry["msg"])
	assert.Equal(t, "value", entry["key"])
}

func TestNew_DefaultLevelHidesInfo(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Output = &buf
	logger := New(cfg)

	logger.Info("quiet")
	assert.Empty(t, buf.String())

	logger.Warn("loud")
	assert.Contains(t, buf.String(), "loud")
}

func TestNew_DebugOverridesLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(&Config{Output: &buf, Level: slog.LevelError, Debug: true})
	logger.Debug("debug message")

	assert.Contains(t, buf.String(), "debug message")
}

func TestNewFromEnv(t *testing.T) {
	t.Setenv("CDM_DEBUG", "1")
	assert.True(t, NewFromEnv().Enabled(t.Context(), slog.LevelDebug))

	t.Setenv("CDM_DEBUG", "true")
	assert.True(t, NewFromEnv().Enabled(t.Context(), slog.LevelDebug))

	t.Setenv("CDM_DEBUG", "0")
	assert.False(t, NewFromEnv().Enabled(t.Context(), slog.LevelDebug))

	t.Setenv("CDM_DEBUG", "")
	assert.False(t, NewFromEnv().Enabled(t.Context(), slog.LevelInfo))
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelWarn,
		"verbose": slog.LevelWarn,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "ParseLevel(%q)", in)
	}
}

func TestHelpers(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(&Config{Output: &buf, Debug: true})

	LogCandidates(logger, "recent", 3)
	LogHistoryLoaded(logger, "file", "/h", 10)
	LogAppendFailed(logger, "/x", errors.New("disk full"))

	out := buf.String()
	assert.Contains(t, out, `"mode":"recent"`)
	assert.Contains(t, out, `"entries":10`)
	assert.Contains(t, out, `"error":"disk full"`)
	assert.Contains(t, out, `"level":"WARN"`)
}
