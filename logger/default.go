package logger

import (
	"context"

	"github.com/philipp01105/tenantlog/core"
	"github.com/philipp01105/tenantlog/delegate"
)

var defaultLogger *Logger

func init() {
	// The delegation sink is installed here once and the default logger is
	// never replaced, so it stays the only process-wide sink.
	defaultLogger = NewBuilder().
		WithSink(delegate.Default()).
		WithLevel(core.InfoLevel).
		Build()
}

// Default returns the default logger. Every entry it emits goes to the
// handler of the tenant bound to the ctx passed to the call.
func Default() *Logger {
	return defaultLogger
}

// Package-level convenience functions using the default logger

// Debug logs a debug message using the default logger
func Debug(ctx context.Context, msg string, fields ...core.Field) {
	defaultLogger.Debug(ctx, msg, fields...)
}

// Info logs an info message using the default logger
func Info(ctx context.Context, msg string, fields ...core.Field) {
	defaultLogger.Info(ctx, msg, fields...)
}

// Warn logs a warning message using the default logger
func Warn(ctx context.Context, msg string, fields ...core.Field) {
	defaultLogger.Warn(ctx, msg, fields...)
}

// Error logs an error message using the default logger
func Error(ctx context.Context, msg string, fields ...core.Field) {
	defaultLogger.Error(ctx, msg, fields...)
}

// Fatal logs a fatal message using the default logger and exits the program
func Fatal(ctx context.Context, msg string, fields ...core.Field) {
	defaultLogger.Fatal(ctx, msg, fields...)
}

// Panic logs a panic message using the default logger and panics
func Panic(ctx context.Context, msg string, fields ...core.Field) {
	defaultLogger.Panic(ctx, msg, fields...)
}

// Infof logs a formatted info message using the default logger
func Infof(ctx context.Context, format string, args ...interface{}) {
	defaultLogger.Infof(ctx, format, args...)
}

// Errorf logs a formatted error message using the default logger
func Errorf(ctx context.Context, format string, args ...interface{}) {
	defaultLogger.Errorf(ctx, format, args...)
}

// Flush flushes the handler of the tenant bound to ctx.
func Flush(ctx context.Context) error {
	return defaultLogger.Flush(ctx)
}

// With creates a new logger with additional fields
func With(fields ...core.Field) *Logger {
	return defaultLogger.With(fields...)
}
