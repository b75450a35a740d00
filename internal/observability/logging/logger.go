// Package logging builds the application's slog loggers and carries them through contexts.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
)

// NewLogger creates a new structured logger with JSON output on stdout.
// The log level can be controlled via the LOG_LEVEL environment variable.
// Supported levels: debug, info, warn, error
// Default level: info
func NewLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, handlerOptions()))
}

// NewTextLogger creates a human-readable logger on stderr. The CLI uses it so
// that stdout carries only command output.
func NewTextLogger() *slog.Logger {
	return NewTextLoggerTo(os.Stderr)
}

// NewTextLoggerTo creates a human-readable logger writing to w.
func NewTextLoggerTo(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, handlerOptions()))
}

func handlerOptions() *slog.HandlerOptions {
	level := parseLevel(os.Getenv("LOG_LEVEL"))
	return &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewRunID returns a fresh identifier for one pipeline run.
func NewRunID() string {
	return uuid.NewString()
}

// WithRunID returns a logger that tags every entry with run_id.
func WithRunID(logger *slog.Logger, runID string) *slog.Logger {
	if runID == "" {
		return logger
	}
	return logger.With(slog.String("run_id", runID))
}

// FromContext retrieves the logger from the context, or returns the default logger if not found.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerContextKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey, logger)
}

type contextKey string

const loggerContextKey contextKey = "logger"
