package tui

import (
	"bytes"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/vito/midterm"
)

// eraseLine returns the cursor to column zero and clears the row.
const eraseLine = "\r\x1b[2K"

// Vterm is a scrollable virtual terminal holding one pane of text.
type Vterm struct {
	mu      sync.Mutex
	vt      *midterm.Terminal
	buf     bytes.Buffer
	written bool

	Offset int
	Height int
	Width  int
}

// NewVterm creates an empty Vterm.
func NewVterm() *Vterm {
	return &Vterm{vt: midterm.NewAutoResizingTerminal(), Height: 1}
}

// Write feeds raw bytes to the terminal, following the bottom when already there.
func (v *Vterm) Write(p []byte) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(p) > 0 {
		v.written = true
	}
	return v.write(p)
}

// AppendLine adds a line below the previous one, or redraws the previous one when replace is set.
func (v *Vterm) AppendLine(line string, replace bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	var prefix string
	switch {
	case replace && v.written:
		prefix = eraseLine
	case v.written:
		prefix = "\r\n"
	}
	_, _ = v.write([]byte(prefix + line))
	v.written = true
}

// SetLines replaces the content with lines.
func (v *Vterm) SetLines(lines []string) {
	v.mu.Lock()
	v.vt = midterm.NewAutoResizingTerminal()
	if v.Width > 0 {
		v.vt.ResizeX(v.Width)
	}
	v.written = false
	v.Offset = 0
	v.mu.Unlock()

	for _, l := range lines {
		v.AppendLine(l, false)
	}
	v.mu.Lock()
	v.Offset = 0
	v.mu.Unlock()
}

func (v *Vterm) write(p []byte) (int, error) {
	follow := v.Offset >= v.maxOffset()
	n, err := v.vt.Write(p)
	if follow {
		v.Offset = v.maxOffset()
	}
	return n, err
}

// SetSize updates the visible area.
func (v *Vterm) SetSize(width, height int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	follow := v.Offset >= v.maxOffset()
	v.Width = max(width, 1)
	v.Height = max(height, 1)
	v.vt.ResizeX(v.Width)
	if follow {
		v.Offset = v.maxOffset()
	}
	v.clamp()
}

// UsedHeight returns the number of rows holding content.
func (v *Vterm) UsedHeight() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.vt.UsedHeight()
}

// View renders the visible rows.
func (v *Vterm) View() string {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.clamp()
	v.buf.Reset()
	for i := 0; i < v.Height; i++ {
		row := v.Offset + i
		if row >= v.vt.UsedHeight() {
			break
		}
		if i > 0 {
			_ = v.buf.WriteByte('\n')
		}
		_ = v.vt.RenderLine(&v.buf, row)
	}
	return v.buf.String()
}

// Scroll handles paging keys.
func (v *Vterm) Scroll(msg tea.KeyMsg) {
	v.mu.Lock()
	defer v.mu.Unlock()

	switch msg.String() {
	case "shift+up", "ctrl+k":
		v.Offset--
	case "shift+down", "ctrl+j":
		v.Offset++
	case "pgup":
		v.Offset -= v.Height
	case "pgdown":
		v.Offset += v.Height
	case "home":
		v.Offset = 0
	case "end":
		v.Offset = v.maxOffset()
	}
	v.clamp()
}

func (v *Vterm) clamp() {
	v.Offset = min(max(v.Offset, 0), v.maxOffset())
}

func (v *Vterm) maxOffset() int {
	return max(v.vt.UsedHeight()-v.Height, 0)
}
