package dirt

import (
	"context"
	"log/slog"
	"os"

	"github.com/hupe1980/dirt/engine"
)

// Logger is a slog.Logger with helpers for the events a Finder emits, so
// every event carries the same attribute keys.
type Logger struct {
	*slog.Logger
}

// NewLogger wraps handler. A nil handler logs text to stderr at info
// level.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, nil)
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewTextLogger logs text to stderr from level up.
func NewTextLogger(level slog.Leveler) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NoopLogger discards everything.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithTopN tags every event with the candidate count of the run.
func (l *Logger) WithTopN(n int) *Logger {
	return &Logger{Logger: l.With("top_n", n)}
}

// LogTarget reports one FindTopCandidates call.
func (l *Logger) LogTarget(ctx context.Context, target, records int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "target failed", "target", target, "error", err)
		return
	}
	l.DebugContext(ctx, "target scored", "target", target, "records", records)
}

// LogDegenerate warns about candidates whose NDIV is not finite.
func (l *Logger) LogDegenerate(ctx context.Context, target int, geneID string, degenerate int) {
	l.WarnContext(ctx, "degenerate scores", "target", target, "gene_id", geneID, "degenerate", degenerate)
}

// LogRun reports the outcome of a run. Skipped targets or degenerate
// scores raise it to a warning.
func (l *Logger) LogRun(ctx context.Context, stats engine.Stats, err error) {
	attrs := []any{
		"blocks", stats.Blocks,
		"targets", stats.Targets,
		"records", stats.Records,
		"elapsed", stats.Elapsed,
	}
	switch {
	case err != nil:
		l.ErrorContext(ctx, "run failed", append(attrs, "error", err)...)
	case stats.Skipped > 0 || stats.Degenerate > 0:
		l.WarnContext(ctx, "run finished with warnings",
			append(attrs, "skipped", stats.Skipped, "degenerate", stats.Degenerate)...)
	default:
		l.InfoContext(ctx, "run finished", attrs...)
	}
}
