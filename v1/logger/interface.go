package logger

import "context"

// Logger is the logging contract consumed by the other packages of this module.
// Each package declares the narrower subset it needs, so any implementation of
// this interface (or *LoggerClient itself) can be injected there.
//
// This interface is implemented by the concrete *LoggerClient type.
type Logger interface {
	// Info logs informational messages with optional error and additional fields.
	Info(msg string, err error, fields ...map[string]interface{})

	// Debug logs debug-level messages with optional error and additional fields.
	Debug(msg string, err error, fields ...map[string]interface{})

	// Warn logs warning messages with optional error and additional fields.
	Warn(msg string, err error, fields ...map[string]interface{})

	// Error logs error messages with the associated error and optional additional fields.
	Error(msg string, err error, fields ...map[string]interface{})

	// Fatal logs a critical message and terminates the process.
	Fatal(msg string, err error, fields ...map[string]interface{})

	// InfoWithContext logs an informational message with trace context.
	InfoWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})

	// DebugWithContext logs a debug message with trace context.
	DebugWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})

	// WarnWithContext logs a warning message with trace context.
	WarnWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})

	// ErrorWithContext logs an error message with trace context.
	ErrorWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
}
