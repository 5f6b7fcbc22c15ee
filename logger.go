package refgo

import (
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with refgo-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithKind adds a block kind field to the logger.
func (l *Logger) WithKind(kind BlockKind) *Logger {
	return &Logger{
		Logger: l.Logger.With("kind", kind.String()),
	}
}

// LogCreate logs the outcome of a factory or adoption.
func (l *Logger) LogCreate(kind BlockKind, count int, err error) {
	if err != nil {
		l.Warn("create failed",
			"kind", kind.String(),
			"count", count,
			"error", err,
		)
	} else {
		l.Debug("block created",
			"kind", kind.String(),
			"count", count,
		)
	}
}

// LogDestroy logs a payload teardown.
func (l *Logger) LogDestroy(kind BlockKind, duration time.Duration, err error) {
	if err != nil {
		l.Error("payload destroy failed",
			"kind", kind.String(),
			"duration", duration,
			"error", err,
		)
	} else {
		l.Debug("payload destroyed",
			"kind", kind.String(),
			"duration", duration,
		)
	}
}

// LogReclaim logs that block storage was handed back to its allocator.
func (l *Logger) LogReclaim(kind BlockKind) {
	l.Debug("block reclaimed",
		"kind", kind.String(),
	)
}

// LogUpgrade logs a failed weak-to-strong upgrade.
func (l *Logger) LogUpgrade(kind BlockKind, ok bool) {
	if !ok {
		l.Debug("weak upgrade failed",
			"kind", kind.String(),
		)
	}
}
