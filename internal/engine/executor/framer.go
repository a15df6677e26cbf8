package executor

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Frame is one line cut from the process stream.
type Frame struct {
	Text string
	// Progress is set when the text looks like a progress bar.
	Progress bool
	// Redraw is set when the line ended with a lone carriage return.
	Redraw bool
}

// Framer cuts a raw terminal stream into lines. A carriage return directly
// followed by a newline ends a line like a newline does; a lone carriage
// return marks the line as a redraw.
type Framer struct {
	pending strings.Builder
	cr      bool
}

// Feed consumes a chunk and returns the completed non-empty lines.
// A trailing carriage return is held until the next byte arrives.
func (f *Framer) Feed(chunk []byte) []Frame {
	var out []Frame
	emit := func(redraw bool) {
		if frame, ok := f.cut(redraw); ok {
			out = append(out, frame)
		}
	}
	for _, b := range chunk {
		if f.cr {
			f.cr = false
			if b == '\n' {
				emit(false)
				continue
			}
			emit(true)
		}
		switch b {
		case '\r':
			f.cr = true
		case '\n':
			emit(false)
		default:
			f.pending.WriteByte(b)
		}
	}
	return out
}

// Pending returns the unterminated tail with escape sequences removed.
func (f *Framer) Pending() string {
	return ansi.Strip(f.pending.String())
}

// Take returns the unterminated tail as a line and clears it.
func (f *Framer) Take() (Frame, bool) {
	redraw := f.cr
	f.cr = false
	return f.cut(redraw)
}

func (f *Framer) cut(redraw bool) (Frame, bool) {
	text := strings.TrimRight(ansi.Strip(f.pending.String()), " \t")
	f.pending.Reset()
	if strings.TrimSpace(text) == "" {
		return Frame{}, false
	}
	return Frame{Text: text, Progress: IsProgress(text), Redraw: redraw}, true
}

// IsProgress reports whether a line looks like a redrawn progress bar.
func IsProgress(line string) bool {
	return strings.Contains(line, "[") && strings.Contains(line, "]") && strings.Contains(line, "%")
}
