// Package log provides JSON-lines structured logging for cdm diagnostics.
//
// The interactive transcript and the selected path share stderr and stdout with
// the user's shell, so logging defaults to warn and is only verbose on request.
package log

import (
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Config configures the structured logger.
type Config struct {
	// Output is the writer for log output (default: os.Stderr)
	Output io.Writer

	// Level is the minimum log level (default: LevelWarn)
	Level slog.Level

	// Debug enables debug level logging (overrides Level)
	Debug bool
}

// DefaultConfig returns the default logging configuration.
func DefaultConfig() *Config {
	return &Config{
		Output: os.Stderr,
		Level:  slog.LevelWarn,
	}
}

// New creates a JSON-lines structured logger:
//
//	{"ts":"2024-01-15T10:30:00Z","level":"DEBUG","msg":"candidates ready","mode":"recent","count":12}
func New(cfg *Config) *slog.Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	level := cfg.Level
	if cfg.Debug {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Key = "ts"
			}
			return a
		},
	}
	return slog.New(slog.NewJSONHandler(output, opts))
}

// NewFromEnv creates a logger for use before the configuration is available.
// A true CDM_DEBUG value enables debug logging.
func NewFromEnv() *slog.Logger {
	cfg := DefaultConfig()
	if b, err := strconv.ParseBool(os.Getenv("CDM_DEBUG")); err == nil && b {
		cfg.Debug = true
	}
	return New(cfg)
}

// ParseLevel maps debug, info, warn and error to slog levels. Anything else is warn.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// LogCandidates logs the candidate list handed to the picker.
func LogCandidates(logger *slog.Logger, mode string, count int) {
	logger.Debug("candidates ready", "mode", mode, "count", count)
}

// LogHistoryLoaded logs a history load.
func LogHistoryLoaded(logger *slog.Logger, backend, path string, entries int) {
	logger.Debug("history loaded", "backend", backend, "path", path, "entries", entries)
}

// LogAppendFailed logs a visit that could not be recorded. The selection itself
// still succeeds.
func LogAppendFailed(logger *slog.Logger, path string, err error) {
	logger.Warn("failed to record visit", "path", path, "error", err)
}
