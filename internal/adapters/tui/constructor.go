// Package tui provides the interactive plan and session view.
package tui

import (
	"io"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/pkgdeck/internal/ui/output"
)

// NewModel creates a model with every section pending. w selects the color profile.
func NewModel(w io.Writer, ctrl Controller) *Model {
	lipgloss.SetColorProfile(output.New(w).Profile)

	prompt := textinput.New()
	prompt.Prompt = ""
	prompt.EchoMode = textinput.EchoPassword
	prompt.EchoCharacter = '*'
	_ = prompt.Cursor.SetMode(cursor.CursorStatic)

	m := &Model{
		Sections:   make([]*SectionNode, 0, len(sectionOrder)),
		SectionMap: make(map[string]*SectionNode, len(sectionOrder)),
		Prompt:     prompt,
		FollowMode: true,
		controller: ctrl,
	}
	for _, name := range sectionOrder {
		node := &SectionNode{Name: name, Status: StatusPending, Term: NewVterm()}
		m.Sections = append(m.Sections, node)
		m.SectionMap[name] = node
	}
	m.SectionMap[SectionDetails].Status = StatusEmpty
	m.SectionMap[SectionSession].Status = StatusEmpty
	return m
}
