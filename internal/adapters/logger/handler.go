package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"go.trai.ch/pkgdeck/internal/ui/output"
	"go.trai.ch/pkgdeck/internal/ui/style"
)

// levelMark is the symbol and color a record of at least the given level gets.
type levelMark struct {
	min    slog.Level
	symbol string
	color  lipgloss.Color
}

// marks is ordered from the most to the least severe level.
var marks = []levelMark{
	{min: slog.LevelError, symbol: style.Cross, color: style.Red},
	{min: slog.LevelWarn, symbol: style.Warning, color: style.Yellow},
	{min: slog.LevelInfo, color: style.Slate},
}

// ConsoleHandler is a slog.Handler writing one colored line per record.
// Attributes added with WithAttrs are rendered once and reused.
type ConsoleHandler struct {
	out    *termenv.Output
	level  slog.Leveler
	prefix string
	fixed  string
}

// NewConsoleHandler creates a ConsoleHandler writing to w, or stderr when w is nil.
func NewConsoleHandler(w io.Writer, opts *slog.HandlerOptions) *ConsoleHandler {
	if w == nil {
		w = os.Stderr
	}
	h := &ConsoleHandler{out: output.New(w), level: slog.LevelInfo}
	if opts != nil && opts.Level != nil {
		h.level = opts.Level
	}
	return h
}

// Enabled reports whether records at level are written.
func (h *ConsoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle writes r as a single line.
//
//nolint:gocritic // slog.Handler interface requires slog.Record by value
func (h *ConsoleHandler) Handle(_ context.Context, r slog.Record) error {
	var line strings.Builder
	color := style.Faint
	for _, m := range marks {
		if r.Level < m.min {
			continue
		}
		if m.symbol != "" {
			line.WriteString(m.symbol + " ")
		}
		color = m.color
		break
	}

	line.WriteString(r.Message)
	line.WriteString(h.fixed)
	r.Attrs(func(a slog.Attr) bool {
		h.appendAttr(&line, a)
		return true
	})

	styled := h.out.String(line.String()).Foreground(termenv.RGBColor(string(color)))
	_, err := h.out.WriteString(styled.String() + "\n")
	return err
}

// WithAttrs returns a handler that writes attrs after every message.
func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	var b strings.Builder
	b.WriteString(h.fixed)
	for _, a := range attrs {
		h.appendAttr(&b, a)
	}
	next.fixed = b.String()
	return &next
}

// WithGroup returns a handler that qualifies later attribute keys with name.
func (h *ConsoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

func (h *ConsoleHandler) appendAttr(b *strings.Builder, a slog.Attr) {
	if a.Equal(slog.Attr{}) {
		return
	}
	b.WriteString(" " + h.prefix + a.Key + "=" + a.Value.String())
}
