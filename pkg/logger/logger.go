package logger

import (
	"log/slog"
	"os"
)

var logger *slog.Logger

func init() {
	logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))
}

// Info logs the provided message at [InfoLevel] with optional slog attributes.
func Info(msg string, args ...any) {
	logger.Info(msg, args...)
}

// Debug logs the provided message at [DebugLevel] with optional slog attributes.
func Debug(msg string, args ...any) {
	logger.Debug(msg, args...)
}

// Warn logs the provided message at [WarnLevel] with optional slog attributes.
func Warn(msg string, args ...any) {
	logger.Warn(msg, args...)
}

// Error logs the provided message at [ErrorLevel] with optional slog attributes.
func Error(msg string, args ...any) {
	logger.Error(msg, args...)
}
