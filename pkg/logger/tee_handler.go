package logger

import (
	"context"
	"errors"
	"log/slog"
)

// teeHandler delivers each record to every wrapped handler that is
// enabled for its level.
type teeHandler struct {
	handlers []slog.Handler
}

func newTeeHandler(handlers ...slog.Handler) *teeHandler {
	return &teeHandler{handlers: handlers}
}

// Enabled reports whether at least one wrapped handler accepts the level.
func (h *teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}

	return false
}

// WithAttrs returns a new handler with additional attributes applied to
// every wrapped handler.
func (h *teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	wrapped := make([]slog.Handler, 0, len(h.handlers))
	for _, handler := range h.handlers {
		wrapped = append(wrapped, handler.WithAttrs(attrs))
	}

	return &teeHandler{handlers: wrapped}
}

// WithGroup returns a new handler with an appended group name.
func (h *teeHandler) WithGroup(name string) slog.Handler {
	wrapped := make([]slog.Handler, 0, len(h.handlers))
	for _, handler := range h.handlers {
		wrapped = append(wrapped, handler.WithGroup(name))
	}

	return &teeHandler{handlers: wrapped}
}

// Handle delegates the record to every enabled wrapped handler.
func (h *teeHandler) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, handler := range h.handlers {
		if !handler.Enabled(ctx, record.Level) {
			continue
		}
		if err := handler.Handle(ctx, record.Clone()); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
