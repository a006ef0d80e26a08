package logging

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"
)

// New creates a console slog.Logger with the provided level string. When
// filePath is non-empty, records are also appended there as JSON. Timestamps
// are rendered in loc so logs match the bridge's configured timezone.
func New(level, filePath string, loc *time.Location) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:       levelFromString(level),
		ReplaceAttr: localTime(loc),
	}

	handlers := []slog.Handler{slog.NewTextHandler(os.Stdout, opts)}

	if filePath != "" {
		f, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			slog.New(handlers[0]).Warn("cannot open log file", "path", filePath, "error", err)
		} else {
			handlers = append(handlers, slog.NewJSONHandler(f, opts))
		}
	}

	if len(handlers) == 1 {
		return slog.New(handlers[0])
	}
	return slog.New(fanout(handlers...))
}

func localTime(loc *time.Location) func([]string, slog.Attr) slog.Attr {
	if loc == nil {
		loc = time.UTC
	}
	return func(groups []string, a slog.Attr) slog.Attr {
		if a.Key == slog.TimeKey && a.Value.Kind() == slog.KindTime {
			a.Value = slog.TimeValue(a.Value.Time().In(loc))
		}
		return a
	}
}

func levelFromString(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "error":
		return slog.LevelError
	case "warn", "warning":
		return slog.LevelWarn
	case "info":
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

type multiHandler struct{ hs []slog.Handler }

func fanout(h ...slog.Handler) slog.Handler { return &multiHandler{hs: h} }

func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.hs {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m.hs {
		_ = h.Handle(ctx, r)
	}
	return nil
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	hs := make([]slog.Handler, len(m.hs))
	for i, h := range m.hs {
		hs[i] = h.WithAttrs(attrs)
	}
	return &multiHandler{hs: hs}
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	hs := make([]slog.Handler, len(m.hs))
	for i, h := range m.hs {
		hs[i] = h.WithGroup(name)
	}
	return &multiHandler{hs: hs}
}
