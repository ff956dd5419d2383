package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// Handler is a slog.Handler writing one "LEVEL message key=value" line per
// record, with colored levels and keys when enabled.
type Handler struct {
	opts   slog.HandlerOptions
	out    io.Writer
	mu     *sync.Mutex
	attrs  []slog.Attr
	prefix string

	levelColors map[slog.Level]*color.Color
	keyColor    *color.Color
}

// NewHandler creates a text handler. A nil opts logs at Info level.
func NewHandler(out io.Writer, opts *slog.HandlerOptions, colored bool) *Handler {
	if opts == nil {
		opts = &slog.HandlerOptions{} //nolint:exhaustruct
	}

	h := &Handler{opts: *opts, out: out, mu: &sync.Mutex{}} //nolint:exhaustruct

	if colored {
		h.levelColors = map[slog.Level]*color.Color{
			slog.LevelDebug: NewColor(color.FgMagenta),
			slog.LevelInfo:  NewColor(color.FgGreen),
			slog.LevelWarn:  NewColor(color.FgYellow),
			slog.LevelError: NewColor(color.FgRed, color.Bold),
		}
		h.keyColor = NewColor(color.FgCyan)
	}

	return h
}

// Enabled implements slog.Handler.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}

	return level >= minLevel
}

// Handle implements slog.Handler.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder

	fmt.Fprintf(&b, "%-5s %s", h.level(r.Level), r.Message)

	for _, a := range h.attrs {
		h.appendAttr(&b, "", a)
	}

	r.Attrs(func(a slog.Attr) bool {
		h.appendAttr(&b, h.prefix, a)

		return true
	})

	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := io.WriteString(h.out, b.String())

	return err
}

func (h *Handler) level(level slog.Level) string {
	text := level.String()
	if h.levelColors == nil {
		return text
	}

	switch {
	case level >= slog.LevelError:
		return h.levelColors[slog.LevelError].Sprint(text)
	case level >= slog.LevelWarn:
		return h.levelColors[slog.LevelWarn].Sprint(text)
	case level >= slog.LevelInfo:
		return h.levelColors[slog.LevelInfo].Sprint(text)
	default:
		return h.levelColors[slog.LevelDebug].Sprint(text)
	}
}

func (h *Handler) appendAttr(b *strings.Builder, prefix string, a slog.Attr) {
	if a.Equal(slog.Attr{}) { //nolint:exhaustruct
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		for _, inner := range a.Value.Group() {
			h.appendAttr(b, prefix+a.Key+".", inner)
		}

		return
	}

	key := prefix + a.Key
	if h.keyColor != nil {
		key = h.keyColor.Sprint(key)
	}

	fmt.Fprintf(b, " %s=%v", key, a.Value.Resolve().Any())
}

// WithAttrs implements slog.Handler.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	next.attrs = append(next.attrs, h.attrs...)

	for _, a := range attrs {
		next.attrs = append(next.attrs, slog.Attr{Key: h.prefix + a.Key, Value: a.Value})
	}

	return &next
}

// WithGroup implements slog.Handler. Groups prefix the keys of later
// attributes.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	next := *h
	next.prefix = h.prefix + name + "."

	return &next
}
