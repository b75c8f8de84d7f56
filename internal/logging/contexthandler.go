package logging

import (
	"context"
	"log/slog"
)

// ContextProvider returns attributes to stamp on the record being written.
type ContextProvider func() []slog.Attr

// CampaignProvider tags records with the campaign name and clock that fn
// reports. fn is called on every record, from any goroutine. Nothing is
// added while no campaign is loaded.
func CampaignProvider(fn func() (name string, clock int64)) ContextProvider {
	return func() []slog.Attr {
		name, clock := fn()
		if name == "" {
			return nil
		}
		return []slog.Attr{
			slog.String("campaign", name),
			slog.Int64("clock", clock),
		}
	}
}

// contextHandler asks its provider for attributes at write time, so
// records logged by long-lived loggers carry the current campaign clock.
type contextHandler struct {
	inner    slog.Handler
	provider ContextProvider
}

func (h *contextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if attrs := h.provider(); len(attrs) > 0 {
		r = r.Clone()
		r.AddAttrs(attrs...)
	}
	return h.inner.Handle(ctx, r)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{inner: h.inner.WithAttrs(attrs), provider: h.provider}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &contextHandler{inner: h.inner.WithGroup(name), provider: h.provider}
}
