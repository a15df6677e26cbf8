package tui

import (
	"fmt"
	"strings"

	"github.com/awnumar/memguard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/pkgdeck/internal/core/domain"
	"go.trai.ch/pkgdeck/internal/ui/style"
)

const (
	sectionListWidthRatio = 0.3
	paneBorderWidth       = 4
	footerLines           = 2
)

// SectionStatus is the state shown next to a section name.
type SectionStatus string

const (
	// StatusPending means the plan has not arrived yet.
	StatusPending SectionStatus = "Pending"
	// StatusEmpty means the section has nothing to show.
	StatusEmpty SectionStatus = "Empty"
	// StatusReady means the section has content.
	StatusReady SectionStatus = "Ready"
	// StatusWarning means the content needs attention.
	StatusWarning SectionStatus = "Warning"
	// StatusUnavailable means the section could not be computed.
	StatusUnavailable SectionStatus = "Unavailable"
	// StatusRunning means a session is streaming output.
	StatusRunning SectionStatus = "Running"
	// StatusDone means the last session completed.
	StatusDone SectionStatus = "Done"
	// StatusError means the section reports a failure.
	StatusError SectionStatus = "Error"
)

// Controller receives what the user asks for. Calls are made off the UI goroutine.
type Controller interface {
	Execute(force bool)
	Refresh()
	Abort()
	Details()
	Answer(resp domain.CredentialResponse)
}

// SectionNode is one entry of the section list.
type SectionNode struct {
	Name   string
	Status SectionStatus
	Count  int
	Term   *Vterm
}

// Model is the interactive plan view.
type Model struct {
	Sections   []*SectionNode
	SectionMap map[string]*SectionNode

	Plan      *domain.Plan
	SessionID string
	Running   bool

	StatusText  string
	StatusAlert bool

	Prompt     textinput.Model
	Prompting  bool
	PromptText string

	SelectedIdx int
	ListOffset  int
	ListHeight  int
	PaneWidth   int
	PaneHeight  int
	FollowMode  bool

	controller Controller
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) selected() *SectionNode {
	if m.SelectedIdx >= 0 && m.SelectedIdx < len(m.Sections) {
		return m.Sections[m.SelectedIdx]
	}
	return nil
}

func (m *Model) ensureVisible() {
	if m.ListHeight <= 0 {
		return
	}
	if m.SelectedIdx < m.ListOffset {
		m.ListOffset = m.SelectedIdx
	} else if m.SelectedIdx >= m.ListOffset+m.ListHeight {
		m.ListOffset = m.SelectedIdx - m.ListHeight + 1
	}
}

func (m *Model) selectSection(name string) {
	for i, s := range m.Sections {
		if s.Name == name {
			m.SelectedIdx = i
			m.ensureVisible()
			return
		}
	}
}

func (m *Model) setStatus(text string, alert bool) {
	m.StatusText = text
	m.StatusAlert = alert
}

// do runs f against the controller as a command.
func (m *Model) do(f func(Controller)) tea.Cmd {
	ctrl := m.controller
	if ctrl == nil {
		return nil
	}
	return func() tea.Msg {
		f(ctrl)
		return nil
	}
}

// Update handles incoming messages and updates the model state.
//
//nolint:cyclop // one case per message type
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.Prompting {
			return m, m.promptKey(msg)
		}
		return m, m.key(msg)

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case MsgPlan:
		m.applyPlan(msg.Plan)

	case MsgSessionStarted:
		m.SessionID = msg.Record.ID
		m.Running = true
		node := m.SectionMap[SectionSession]
		node.Status = StatusRunning
		node.Count++
		node.Term.AppendLine("$ "+strings.Join(msg.Record.Argv, " "), false)
		if m.FollowMode {
			m.selectSection(SectionSession)
		}

	case MsgSessionOutput:
		if msg.SessionID == m.SessionID {
			m.SectionMap[SectionSession].Term.AppendLine(msg.Line, msg.Replace)
		}

	case MsgCredentialRequested:
		m.Prompting = true
		m.PromptText = promptText(msg.Request)
		m.Prompt.Reset()
		return m, m.Prompt.Focus()

	case MsgSessionFinished:
		m.finishSession(msg.Record)

	case MsgStatus:
		m.setStatus(msg.Text, msg.Alert)

	case MsgDetails:
		m.fill(SectionDetails, detailsContent(msg))
	}

	return m, nil
}

func (m *Model) key(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q":
		if m.Running {
			m.setStatus("a command is running, press a to abort it", true)
			return nil
		}
		return tea.Quit
	case "ctrl+c":
		if m.Running {
			return m.abort()
		}
		return tea.Quit
	case "k", "up":
		if m.SelectedIdx > 0 {
			m.SelectedIdx--
			m.FollowMode = false
			m.ensureVisible()
		}
	case "j", "down":
		if m.SelectedIdx < len(m.Sections)-1 {
			m.SelectedIdx++
			m.FollowMode = false
			m.ensureVisible()
		}
	case "esc":
		m.FollowMode = true
		if m.Running {
			m.selectSection(SectionSession)
		}
	case "a":
		if m.Running {
			return m.abort()
		}
	case "r":
		m.setStatus("refreshing...", false)
		return m.do(func(c Controller) { c.Refresh() })
	case "i":
		return m.do(func(c Controller) { c.Details() })
	case "x", "X":
		return m.execute(msg.String() == "X")
	default:
		if node := m.selected(); node != nil {
			node.Term.Scroll(msg)
		}
	}
	return nil
}

func (m *Model) execute(force bool) tea.Cmd {
	switch {
	case m.Running:
		m.setStatus("a command is already running", true)
		return nil
	case m.Plan == nil:
		m.setStatus("the plan is not ready yet", true)
		return nil
	case m.Plan.Blocking && !force:
		m.setStatus("plan has conflicts, press X to proceed anyway", true)
		return nil
	}
	m.FollowMode = true
	m.selectSection(SectionSession)
	return m.do(func(c Controller) { c.Execute(force) })
}

func (m *Model) abort() tea.Cmd {
	m.setStatus("aborting...", false)
	return m.do(func(c Controller) { c.Abort() })
}

func (m *Model) promptKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter:
		secret := memguard.NewBufferFromBytes([]byte(m.Prompt.Value()))
		m.closePrompt()
		return m.do(func(c Controller) { c.Answer(domain.CredentialResponse{Secret: secret}) })
	case tea.KeyEsc, tea.KeyCtrlC:
		m.closePrompt()
		return m.do(func(c Controller) { c.Answer(domain.CredentialResponse{Cancelled: true}) })
	}
	var cmd tea.Cmd
	m.Prompt, cmd = m.Prompt.Update(msg)
	return cmd
}

func (m *Model) closePrompt() {
	m.Prompt.Reset()
	m.Prompt.Blur()
	m.Prompting = false
	m.PromptText = ""
}

func promptText(req domain.CredentialRequest) string {
	text := strings.TrimSpace(req.PromptText)
	if text == "" {
		text = fmt.Sprintf("%s password:", req.Purpose)
	}
	if req.Attempt > 1 {
		text = fmt.Sprintf("%s (attempt %d)", text, req.Attempt)
	}
	return text
}

func (m *Model) finishSession(rec domain.SessionRecord) {
	m.Running = false
	if m.Prompting {
		m.closePrompt()
	}
	node := m.SectionMap[SectionSession]
	if rec.Err != nil {
		node.Status = StatusError
		node.Term.AppendLine(fmt.Sprintf("%s %s: %v", style.Cross, rec.State, rec.Err), false)
		m.setStatus(fmt.Sprintf("%s %s", strings.Join(rec.Argv, " "), rec.State), true)
		return
	}
	node.Status = StatusDone
	node.Term.AppendLine(style.Check+" "+rec.State.String(), false)
}

func (m *Model) applyPlan(plan domain.Plan) {
	m.Plan = &plan
	for name, content := range planContents(&plan) {
		m.fill(name, content)
	}
}

func (m *Model) fill(name string, content sectionContent) {
	node, ok := m.SectionMap[name]
	if !ok {
		return
	}
	node.Status = content.status
	node.Count = content.count
	node.Term.SetLines(content.lines)
}

func (m *Model) resize(width, height int) {
	listWidth := int(float64(width) * sectionListWidthRatio)
	m.PaneWidth = width - listWidth - paneBorderWidth

	headerHeight := lipgloss.Height(titleStyle.Render("SECTIONS") + "\n\n")
	m.ListHeight = height - headerHeight - footerLines
	m.PaneHeight = height - lipgloss.Height(titleStyle.Render("SECTIONS")) - footerLines
	m.ensureVisible()

	m.Prompt.Width = max(m.PaneWidth, 1)
	for _, node := range m.Sections {
		node.Term.SetSize(m.PaneWidth, m.PaneHeight)
	}
}
