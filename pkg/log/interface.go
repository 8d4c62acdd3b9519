// Package log provides the structured logging interface used across lassoridge.
//
// The Logger interface is slog-shaped (message plus alternating key/value
// fields) and is backed by zerolog in production. Attribute keys for
// regression work live in attributes.go.
//
// Example usage:
//
//	logger := log.GetLoggerWithName("linear_model.lasso").With(
//	    log.ModelNameKey, "Lasso",
//	)
//	logger.Info("fit completed",
//	    log.IterationKey, 42,
//	    log.RegularizationKey, 0.1,
//	)
package log

import (
	"context"
)

// Logger defines a structured logging interface compatible with Go's log/slog.
//
// Fields are alternating key/value pairs. Error accepts an error as its first
// field; the zerolog backend attaches its stack trace.
type Logger interface {
	// Debug logs a debug-level message. Debug logs carry per-iteration
	// solver progress and are disabled by default.
	Debug(msg string, fields ...any)

	// Info logs an info-level message.
	Info(msg string, fields ...any)

	// Warn logs a warning-level message.
	Warn(msg string, fields ...any)

	// Error logs an error-level message. If the first field is an error it
	// is recorded under the "error" key together with its stack.
	Error(msg string, fields ...any)

	// With returns a new Logger with the given fields pre-populated.
	With(fields ...any) Logger

	// Enabled reports whether the logger emits log records at the given level.
	// Use it to skip building expensive fields:
	//
	//	if logger.Enabled(ctx, LevelDebug) {
	//	    logger.Debug("coefficients", "coef", coefCopy())
	//	}
	Enabled(ctx context.Context, level Level) bool
}

// Level represents a logging level, compatible with slog.Level.
type Level int

// Standard logging levels, values are compatible with slog.Level.
const (
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// LoggerProvider creates and configures loggers. Tests swap the global
// provider for a TestLoggerProvider.
type LoggerProvider interface {
	// GetLogger returns the default logger instance.
	GetLogger() Logger

	// GetLoggerWithName returns a logger tagged with a component name.
	GetLoggerWithName(name string) Logger

	// SetLevel sets the minimum log level for all loggers created by this provider.
	SetLevel(level Level)
}
