package logger

import (
	"context"
	"errors"
	"log/slog"
)

// fanoutHandler delivers each record to every wrapped handler. It exists so
// the sentry handler can sit next to the primary output without an extra
// multiplexing dependency.
type fanoutHandler struct {
	handlers []slog.Handler
}

func newFanoutHandler(handlers ...slog.Handler) slog.Handler {
	return &fanoutHandler{handlers: handlers}
}

func (h *fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, next := range h.handlers {
		if next.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *fanoutHandler) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, next := range h.handlers {
		if !next.Enabled(ctx, record.Level) {
			continue
		}
		if err := next.Handle(ctx, record.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (h *fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	wrapped := make([]slog.Handler, len(h.handlers))
	for i, next := range h.handlers {
		wrapped[i] = next.WithAttrs(attrs)
	}
	return &fanoutHandler{handlers: wrapped}
}

func (h *fanoutHandler) WithGroup(name string) slog.Handler {
	wrapped := make([]slog.Handler, len(h.handlers))
	for i, next := range h.handlers {
		wrapped[i] = next.WithGroup(name)
	}
	return &fanoutHandler{handlers: wrapped}
}
