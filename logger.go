package lazycdf

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with import-specific helpers.
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
func NewJSONLogger(level slog.Level) *Logger {
	return &Logger{
		Logger: slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithDataset adds a dataset field to the logger.
func (l *Logger) WithDataset(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("dataset", name),
	}
}

// LogStage logs one strategy attempt.
func (l *Logger) LogStage(ctx context.Context, strategy string, duration time.Duration, err error) {
	if err != nil {
		l.WarnContext(ctx, "strategy failed",
			"strategy", strategy,
			"duration", duration,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "strategy succeeded",
			"strategy", strategy,
			"duration", duration,
		)
	}
}

// LogFallback logs a move to the next strategy after memory exhaustion.
func (l *Logger) LogFallback(ctx context.Context, from, to string, heapBytes uint64) {
	l.InfoContext(ctx, "falling back to next strategy",
		"from", from,
		"to", to,
		"heap_bytes", heapBytes,
	)
}

// LogImport logs the outcome of an import.
func (l *Logger) LogImport(ctx context.Context, strategy string, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "import failed",
			"duration", duration,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "import completed",
			"strategy", strategy,
			"duration", duration,
		)
	}
}
