package logging

import (
	"context"
	"errors"
	"log/slog"
	"slices"
)

// MultiHandler fans one record stream out to several sinks: console,
// run log file and the optional GELF and OTel bridges.
type MultiHandler struct {
	handlers []slog.Handler
}

// NewMultiHandler builds the fan-out. Nil sinks are dropped so callers
// can pass optional handlers straight through.
func NewMultiHandler(handlers ...slog.Handler) *MultiHandler {
	return &MultiHandler{
		handlers: slices.DeleteFunc(slices.Clone(handlers), func(h slog.Handler) bool {
			return h == nil
		}),
	}
}

// Enabled reports whether at least one sink wants records at level.
func (m *MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle delivers the record to every enabled sink. A failing sink does
// not stop delivery to the others; failures are joined into the
// returned error.
func (m *MultiHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range m.handlers {
		if h.Enabled(ctx, r.Level) {
			if err := h.Handle(ctx, r.Clone()); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// WithAttrs forwards the attrs to every sink.
func (m *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithAttrs(attrs)
	}
	return &MultiHandler{handlers: handlers}
}

// WithGroup forwards the group to every sink.
func (m *MultiHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return m
	}
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithGroup(name)
	}
	return &MultiHandler{handlers: handlers}
}
