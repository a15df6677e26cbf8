package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/pkgdeck/internal/ui/style"
)

const helpText = "j/k select  x execute  X force  r refresh  i details  a abort  q quit"

// View renders the UI.
func (m *Model) View() string {
	if m.ListHeight == 0 {
		return "Initializing..."
	}

	panes := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.sectionList(),
		m.pane(),
	)
	return lipgloss.JoinVertical(lipgloss.Left, panes, m.footer())
}

func (m *Model) sectionList() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("SECTIONS") + "\n\n")

	end := min(m.ListOffset+m.ListHeight, len(m.Sections))
	start := min(m.ListOffset, end)
	for i := start; i < end; i++ {
		s.WriteString(m.sectionRow(i, m.Sections[i]) + "\n")
	}

	return listStyle.Render(s.String())
}

func (m *Model) sectionRow(index int, node *SectionNode) string {
	label := fmt.Sprintf("%s %s", sectionIcon(node.Status), node.Name)
	if node.Count > 0 {
		label += fmt.Sprintf(" (%d)", node.Count)
	}

	if index == m.SelectedIdx {
		return selectedStyle.Render("> ") + selectedStyle.Render(label)
	}
	return "  " + sectionStyle(node.Status).Render(label)
}

func sectionIcon(status SectionStatus) string {
	switch status {
	case StatusReady, StatusDone:
		return style.Check
	case StatusWarning:
		return style.Warning
	case StatusError, StatusUnavailable:
		return style.Cross
	case StatusRunning:
		return style.Dot
	default:
		return style.Circle
	}
}

func sectionStyle(status SectionStatus) lipgloss.Style {
	switch status {
	case StatusReady, StatusDone:
		return sectionReadyStyle
	case StatusWarning:
		return sectionWarningStyle
	case StatusError, StatusUnavailable:
		return sectionErrorStyle
	case StatusRunning:
		return sectionRunningStyle
	case StatusEmpty:
		return sectionEmptyStyle
	default:
		return sectionPendingStyle
	}
}

func (m *Model) pane() string {
	node := m.selected()
	if node == nil {
		return paneStyle.Render(titleStyle.Render("WAITING"))
	}

	title := strings.ToUpper(node.Name)
	header := titleStyle.Render(title)
	if node.Status == StatusError {
		header = alertTitleStyle.Render(title)
	}
	if node.Name == SectionSession {
		mode := " (Manual)"
		if m.FollowMode {
			mode = " (Following)"
		}
		header += statusStyle.Render(mode)
	}

	body := node.Term.View()
	if node.Status == StatusPending {
		body = statusStyle.Render("resolving...")
	}

	return paneStyle.Render(lipgloss.JoinVertical(lipgloss.Left, header, body))
}

func (m *Model) footer() string {
	var status string
	switch {
	case m.Prompting:
		status = alertStyle.Render(m.PromptText) + " " + m.Prompt.View()
	case m.StatusAlert:
		status = alertStyle.Render(m.StatusText)
	default:
		status = statusStyle.Render(m.StatusText)
	}
	return status + "\n" + helpStyle.Render(helpText)
}
