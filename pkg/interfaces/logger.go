package interfaces

import "context"

// Logger is the leveled logging contract used across the menus runtime. It
// matches the method set of github.com/goliatone/go-logger so that package
// plugs in without an adapter layer.
type Logger interface {
	Trace(msg string, args ...any)
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Fatal(msg string, args ...any)
	WithContext(ctx context.Context) Logger
}

// LoggerProvider hands out named loggers. Implementations may return one
// shared instance or module scoped children.
type LoggerProvider interface {
	GetLogger(name string) Logger
}

// FieldsLogger is the optional extension for loggers that can carry
// structured fields on every entry.
type FieldsLogger interface {
	WithFields(fields map[string]any) Logger
}
