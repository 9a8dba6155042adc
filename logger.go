package vecdex

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger for structured operation logging.
// All operations log at Debug level on success and Error level on failure,
// except snapshots and restores which log at Info (they are rare and
// operators usually want them visible).
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger with the given handler.
// If handler is nil, a text handler writing to stderr at Info level is used.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewJSONLogger creates a Logger that writes JSON to stderr at the given level.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that writes text to stderr at the given level.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger returns a Logger that discards everything.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000), // above any level that gets logged
	}))
}

// WithID returns a Logger that annotates every record with the vector id.
func (l *Logger) WithID(id string) *Logger {
	return &Logger{Logger: l.Logger.With(slog.String("id", id))}
}

// WithK returns a Logger that annotates every record with the result count k.
func (l *Logger) WithK(k int) *Logger {
	return &Logger{Logger: l.Logger.With(slog.Int("k", k))}
}

// WithDimension returns a Logger that annotates every record with the vector dimension.
func (l *Logger) WithDimension(dim int) *Logger {
	return &Logger{Logger: l.Logger.With(slog.Int("dimension", dim))}
}

// LogInsert logs the outcome of an insert operation.
func (l *Logger) LogInsert(ctx context.Context, id string, dimension int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "insert failed",
			slog.String("id", id),
			slog.Int("dimension", dimension),
			slog.String("error", err.Error()),
		)
		return
	}
	l.DebugContext(ctx, "insert",
		slog.String("id", id),
		slog.Int("dimension", dimension),
	)
}

// LogBatchInsert logs the outcome of a batch insert operation.
func (l *Logger) LogBatchInsert(ctx context.Context, count, failed int) {
	if failed > 0 {
		l.WarnContext(ctx, "batch insert completed with failures",
			slog.Int("count", count),
			slog.Int("failed", failed),
		)
		return
	}
	l.InfoContext(ctx, "batch insert",
		slog.Int("count", count),
	)
}

// LogSearch logs the outcome of a search operation.
func (l *Logger) LogSearch(ctx context.Context, k, found int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "search failed",
			slog.Int("k", k),
			slog.String("error", err.Error()),
		)
		return
	}
	l.DebugContext(ctx, "search",
		slog.Int("k", k),
		slog.Int("found", found),
	)
}

// LogDelete logs the outcome of a delete operation.
func (l *Logger) LogDelete(ctx context.Context, id string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "delete failed",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return
	}
	l.DebugContext(ctx, "delete",
		slog.String("id", id),
	)
}

// LogCompact logs the outcome of a compaction, with the number of
// tombstones it reclaimed.
func (l *Logger) LogCompact(ctx context.Context, reclaimed int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "compact failed",
			slog.String("error", err.Error()),
		)
		return
	}
	l.InfoContext(ctx, "compact",
		slog.Int("reclaimed", reclaimed),
	)
}

// LogSnapshot logs the outcome of saving a snapshot.
func (l *Logger) LogSnapshot(ctx context.Context, filename string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot failed",
			slog.String("filename", filename),
			slog.String("error", err.Error()),
		)
		return
	}
	l.InfoContext(ctx, "snapshot saved",
		slog.String("filename", filename),
	)
}

// LogRestore logs the outcome of loading a snapshot.
func (l *Logger) LogRestore(ctx context.Context, filename string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "restore failed",
			slog.String("filename", filename),
			slog.String("error", err.Error()),
		)
		return
	}
	l.InfoContext(ctx, "snapshot restored",
		slog.String("filename", filename),
	)
}
