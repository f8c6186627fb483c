package fressh

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/EthanShoeDev/fressh-sub000/engine"
)

// Logger wraps slog.Logger with fressh-specific context.
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
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithNamespace adds a namespace field to the logger.
func (l *Logger) WithNamespace(namespace string) *Logger {
	return &Logger{
		Logger: l.Logger.With("namespace", namespace),
	}
}

// WithID adds an entry id field to the logger.
func (l *Logger) WithID(id string) *Logger {
	return &Logger{
		Logger: l.Logger.With("id", id),
	}
}

// LogUpsert logs a write to a directory. Rejected input is a warning.
func (l *Logger) LogUpsert(ctx context.Context, id string, size int, err error) {
	switch {
	case err == nil:
		l.DebugContext(ctx, "entry saved",
			"id", id,
			"size", size,
		)
	case errors.Is(err, ErrValidation), errors.Is(err, ErrDirectoryFull):
		l.WarnContext(ctx, "entry rejected",
			"id", id,
			"error", err,
		)
	default:
		l.ErrorContext(ctx, "entry save failed",
			"id", id,
			"error", err,
		)
	}
}

// LogGet logs a read. A missing entry is not an error.
func (l *Logger) LogGet(ctx context.Context, id string, err error) {
	switch {
	case err == nil:
		l.DebugContext(ctx, "entry read",
			"id", id,
		)
	case errors.Is(err, ErrNotFound):
		l.DebugContext(ctx, "entry not found",
			"id", id,
		)
	default:
		l.ErrorContext(ctx, "entry read failed",
			"id", id,
			"error", err,
		)
	}
}

// LogDelete logs a delete operation.
func (l *Logger) LogDelete(ctx context.Context, id string, err error) {
	switch {
	case err == nil:
		l.DebugContext(ctx, "entry deleted",
			"id", id,
		)
	case errors.Is(err, ErrNotFound):
		l.DebugContext(ctx, "delete of missing entry",
			"id", id,
		)
	default:
		l.ErrorContext(ctx, "entry delete failed",
			"id", id,
			"error", err,
		)
	}
}

// LogList logs a listing. Corrupt entries are reported as a warning.
func (l *Logger) LogList(ctx context.Context, count, corrupt int, err error) {
	switch {
	case err != nil:
		l.ErrorContext(ctx, "list failed",
			"error", err,
		)
	case corrupt > 0:
		l.WarnContext(ctx, "list completed with corrupt entries",
			"count", count,
			"corrupt", corrupt,
		)
	default:
		l.DebugContext(ctx, "list completed",
			"count", count,
		)
	}
}

// LogSweep logs an orphan sweep.
func (l *Logger) LogSweep(ctx context.Context, report *engine.SweepReport, dryRun bool, err error) {
	if err != nil {
		l.ErrorContext(ctx, "sweep failed",
			"dryRun", dryRun,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "sweep completed",
		"scanned", report.Scanned,
		"orphans", len(report.Orphans),
		"deleted", report.Deleted,
		"dryRun", dryRun,
	)
}
