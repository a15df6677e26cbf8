package tui

import (
	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/pkgdeck/internal/ui/style"
)

var (
	sectionPendingStyle = lipgloss.NewStyle().
				Foreground(style.Slate)

	sectionEmptyStyle = lipgloss.NewStyle().
				Foreground(style.Faint)

	sectionReadyStyle = lipgloss.NewStyle().
				Foreground(style.Green)

	sectionWarningStyle = lipgloss.NewStyle().
				Foreground(style.Yellow)

	sectionErrorStyle = lipgloss.NewStyle().
				Foreground(style.Red)

	sectionRunningStyle = lipgloss.NewStyle().
				Foreground(style.Accent).
				Bold(true)

	selectedStyle = lipgloss.NewStyle().
			Foreground(style.Accent).
			Bold(true)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Background(style.Accent).
			Foreground(lipgloss.Color("#FFFFFF"))

	alertTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Background(style.Red).
			Foreground(lipgloss.Color("#FFFFFF"))

	statusStyle = lipgloss.NewStyle().
			Foreground(style.Slate)

	alertStyle = lipgloss.NewStyle().
			Foreground(style.Red).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(style.Faint)

	listStyle = lipgloss.NewStyle().
			PaddingRight(2)

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(style.Slate).
			PaddingLeft(1)
)
