// Package utils provides utility functions including logging.
package utils

import (
	"io"
	"log/slog"
	"os"
)

// Logger is the global structured logger instance.
var Logger = slog.Default()

// InitLogger initializes the structured logger. Production gets JSON output at
// info level; every other environment gets text output at debug level.
func InitLogger(env, service string) {
	Logger = NewLogger(os.Stdout, env).With(slog.String("service", service))

	// Set as default logger
	slog.SetDefault(Logger)

	Logger.Info("logger initialized",
		slog.String("env", env),
	)
}

// NewLogger builds the handler for the given environment.
func NewLogger(w io.Writer, env string) *slog.Logger {
	var h slog.Handler
	if env == "prod" {
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		h = slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	return slog.New(h)
}

// Info logs an info level message with optional key-value pairs.
func Info(msg string, args ...any) {
	Logger.Info(msg, args...)
}

// Error logs an error level message with optional key-value pairs.
func Error(msg string, args ...any) {
	Logger.Error(msg, args...)
}

// Debug logs a debug level message with optional key-value pairs.
func Debug(msg string, args ...any) {
	Logger.Debug(msg, args...)
}

// Warn logs a warning level message with optional key-value pairs.
func Warn(msg string, args ...any) {
	Logger.Warn(msg, args...)
}
