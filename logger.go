package tensgo

import (
	"context"
	"log/slog"
	"os"

	"github.com/hupe1980/tensgo/memory"
)

// Logger wraps slog.Logger with tensgo-specific context.
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
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithKind adds an element kind field to the logger.
func (l *Logger) WithKind(kind string) *Logger {
	return &Logger{
		Logger: l.Logger.With("kind", kind),
	}
}

// WithOp adds an operation name field to the logger.
func (l *Logger) WithOp(op string) *Logger {
	return &Logger{
		Logger: l.Logger.With("op", op),
	}
}

// WithCount adds a count field to the logger.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("count", count),
	}
}

// LogLayer logs a lifetime layer push (released < 0) or pop.
func (l *Logger) LogLayer(ctx context.Context, depth, released int) {
	if released < 0 {
		l.DebugContext(ctx, "layer pushed",
			"depth", depth,
		)
		return
	}
	l.DebugContext(ctx, "layer popped",
		"depth", depth,
		"released", released,
	)
}

// LogPoolStats logs a pool usage snapshot.
func (l *Logger) LogPoolStats(ctx context.Context, s memory.Stats) {
	l.InfoContext(ctx, "pool stats",
		"live_buffers", s.LiveBuffers,
		"live_bytes", s.LiveBytes,
		"free_buffers", s.FreeBuffers,
		"idle_bytes", s.IdleBytes,
		"allocations", s.Allocations,
		"reuses", s.Reuses,
		"discards", s.Discards,
		"layer_depth", s.LayerDepth,
	)
}
