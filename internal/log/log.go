// Package log defines the logging interface shared by the generation pipeline.
//
// Overview:
//   - Responsibility: Decouple pipeline packages from a concrete logger
//   - Key Types: Logger interface with structured key-value logging
//   - Concurrency Model: Implementations must be safe for concurrent use
//   - Error Semantics: Error method takes the error as its first parameter
//   - Performance Notes: Key-value pairs are passed through untouched
//
// Usage:
//
//	logger.Info("handler written", log.Str("path", path))
package log

// Logger defines a structured logging interface compatible with slog concepts.
// Implementations must be safe for concurrent use.
type Logger interface {
	// With returns a new Logger with the given key-value pairs attached.
	With(kv ...any) Logger

	// Debug logs a debug message with optional key-value pairs.
	Debug(msg string, kv ...any)

	// Info logs an informational message with optional key-value pairs.
	Info(msg string, kv ...any)

	// Warn logs a warning message with optional key-value pairs.
	Warn(msg string, kv ...any)

	// Error logs an error message with the error and optional key-value pairs.
	Error(err error, msg string, kv ...any)
}

// Str creates a string key-value pair for structured logging.
func Str(k, v string) any {
	return []any{k, v}
}

// Int creates an integer key-value pair for structured logging.
func Int(k string, v int) any {
	return []any{k, v}
}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return nop{}
}

type nop struct{}

func (n nop) With(kv ...any) Logger                { return n }
func (nop) Debug(msg string, kv ...any)            {}
func (nop) Info(msg string, kv ...any)             {}
func (nop) Warn(msg string, kv ...any)             {}
func (nop) Error(err error, msg string, kv ...any) {}
