package fuzzyjoin

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with join-specific context.
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

// WithRunID adds a run identifier to every record.
func (l *Logger) WithRunID(id string) *Logger {
	return &Logger{
		Logger: l.Logger.With("run_id", id),
	}
}

// WithTables adds the left and right table names.
func (l *Logger) WithTables(left, right string) *Logger {
	return &Logger{
		Logger: l.Logger.With("left_table", left, "right_table", right),
	}
}

// LogLoad logs a table load.
func (l *Logger) LogLoad(ctx context.Context, source string, records int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "load failed",
			"source", source,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "table loaded",
			"source", source,
			"records", records,
		)
	}
}

// LogJoin logs the outcome of a join.
func (l *Logger) LogJoin(ctx context.Context, stats Stats, err error) {
	if err != nil {
		l.ErrorContext(ctx, "join failed",
			"matches", stats.Matches,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "join stats",
			"left", stats.LeftRecords,
			"right", stats.RightRecords,
			"comparisons", stats.Comparisons,
			"matches", stats.Matches,
			"duration", stats.IndexDuration+stats.ScanDuration,
		)
	}
}

// LogWrite logs writing matches to output.
func (l *Logger) LogWrite(ctx context.Context, output string, matches int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "write failed",
			"output", output,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "matches written",
			"output", output,
			"matches", matches,
		)
	}
}
