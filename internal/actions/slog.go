package actions

import (
	"context"
	"log/slog"
	"strings"
)

// DebugHandler is a slog.Handler that mirrors debug records as ::debug::
// workflow commands and passes every record on to next.
type DebugHandler struct {
	runner *Runner
	next   slog.Handler
	attrs  []slog.Attr
	prefix string
}

var _ slog.Handler = (*DebugHandler)(nil)

// NewDebugHandler creates a DebugHandler writing through r.
func NewDebugHandler(r *Runner, next slog.Handler) *DebugHandler {
	return &DebugHandler{runner: r, next: next}
}

// Enabled implements slog.Handler.
func (h *DebugHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level <= slog.LevelDebug || h.next.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *DebugHandler) Handle(ctx context.Context, rec slog.Record) error {
	if rec.Level <= slog.LevelDebug {
		h.runner.Debug(h.format(rec))
	}
	if h.next.Enabled(ctx, rec.Level) {
		return h.next.Handle(ctx, rec)
	}
	return nil
}

// WithAttrs implements slog.Handler.
func (h *DebugHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h2 := *h
	h2.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	h2.attrs = append(h2.attrs, h.attrs...)
	for _, a := range attrs {
		a.Key = h.prefix + a.Key
		h2.attrs = append(h2.attrs, a)
	}
	h2.next = h.next.WithAttrs(attrs)
	return &h2
}

// WithGroup implements slog.Handler.
func (h *DebugHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	h2.prefix = h.prefix + name + "."
	h2.next = h.next.WithGroup(name)
	return &h2
}

// format renders a record as "message key=value ...".
func (h *DebugHandler) format(rec slog.Record) string {
	var b strings.Builder
	b.WriteString(rec.Message)
	for _, a := range h.attrs {
		writeAttr(&b, "", a)
	}
	rec.Attrs(func(a slog.Attr) bool {
		writeAttr(&b, h.prefix, a)
		return true
	})
	return b.String()
}

func writeAttr(b *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		if a.Key != "" {
			prefix += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			writeAttr(b, prefix, ga)
		}
		return
	}
	b.WriteString(" ")
	b.WriteString(prefix)
	b.WriteString(a.Key)
	b.WriteString("=")
	b.WriteString(a.Value.String())
}
