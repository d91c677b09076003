package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
)

// Setup configures the process-wide default logger with two sinks: a
// line-oriented text summary on stderr and, when logFile is non-empty, a
// detailed JSON sink appended to that file. The file is opened once at
// startup with O_APPEND so concurrent writes rely only on the platform's
// atomic-append guarantee.
//
// The returned closer flushes nothing (slog handlers are unbuffered) but
// closes the file descriptor; callers defer it in main.
func Setup(logFile string) (func(), error) {
	summary := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})

	if logFile == "" {
		slog.SetDefault(slog.New(summary))
		return func() {}, nil
	}

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	detail := slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})

	slog.SetDefault(slog.New(teeHandler{summary, detail}))
	return func() { _ = f.Close() }, nil
}

// teeHandler fans one record out to both sinks. A record is handled when
// either sink wants it; each sink still applies its own level filter.
type teeHandler struct {
	summary slog.Handler
	detail  slog.Handler
}

func (t teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return t.summary.Enabled(ctx, level) || t.detail.Enabled(ctx, level)
}

func (t teeHandler) Handle(ctx context.Context, rec slog.Record) error {
	var firstErr error
	if t.summary.Enabled(ctx, rec.Level) {
		firstErr = t.summary.Handle(ctx, rec.Clone())
	}
	if t.detail.Enabled(ctx, rec.Level) {
		if err := t.detail.Handle(ctx, rec.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (t teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return teeHandler{t.summary.WithAttrs(attrs), t.detail.WithAttrs(attrs)}
}

func (t teeHandler) WithGroup(name string) slog.Handler {
	return teeHandler{t.summary.WithGroup(name), t.detail.WithGroup(name)}
}
