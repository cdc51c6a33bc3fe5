package logging

import (
	"context"
	"log/slog"
)

// teeHandler writes each record to the console sink and the rotating file
// sink. Each sink keeps its own level check.
type teeHandler struct {
	sinks []slog.Handler
}

// newTeeHandler joins the non-nil sinks and stamps session_id on all of them
// when sessionID is set.
func newTeeHandler(sessionID string, sinks ...slog.Handler) slog.Handler {
	var live []slog.Handler
	for _, sink := range sinks {
		if sink == nil {
			continue
		}
		if sessionID != "" {
			sink = sink.WithAttrs([]slog.Attr{slog.String(FieldSessionID, sessionID)})
		}
		live = append(live, sink)
	}
	switch len(live) {
	case 0:
		return NoopHandler{}
	case 1:
		return live[0]
	}
	return &teeHandler{sinks: live}
}

func (t *teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, sink := range t.sinks {
		if sink.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (t *teeHandler) Handle(ctx context.Context, record slog.Record) error {
	var first error
	last := len(t.sinks) - 1
	for i, sink := range t.sinks {
		if !sink.Enabled(ctx, record.Level) {
			continue
		}
		rec := record
		if i != last {
			rec = record.Clone()
		}
		if err := sink.Handle(ctx, rec); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (t *teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return t.each(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (t *teeHandler) WithGroup(name string) slog.Handler {
	return t.each(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (t *teeHandler) each(fn func(slog.Handler) slog.Handler) *teeHandler {
	next := make([]slog.Handler, len(t.sinks))
	for i, sink := range t.sinks {
		next[i] = fn(sink)
	}
	return &teeHandler{sinks: next}
}
