package tui_test

import (
	"errors"
	"io"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pkgdeck/internal/adapters/tui"
	"go.trai.ch/pkgdeck/internal/core/domain"
)

type recorder struct {
	calls   []string
	answers []domain.CredentialResponse
}

func (r *recorder) Execute(force bool) {
	if force {
		r.calls = append(r.calls, "execute force")
		return
	}
	r.calls = append(r.calls, "execute")
}
func (r *recorder) Refresh() { r.calls = append(r.calls, "refresh") }
func (r *recorder) Abort()   { r.calls = append(r.calls, "abort") }
func (r *recorder) Details() { r.calls = append(r.calls, "details") }

func (r *recorder) Answer(resp domain.CredentialResponse) {
	r.calls = append(r.calls, "answer")
	r.answers = append(r.answers, resp)
}

func newModel(t *testing.T) (*tui.Model, *recorder) {
	t.Helper()
	rec := &recorder{}
	m := tui.NewModel(io.Discard, rec)
	m = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	return m, rec
}

func update(t *testing.T, m *tui.Model, msg tea.Msg) *tui.Model {
	t.Helper()
	next, cmd := m.Update(msg)
	run(cmd)
	return next.(*tui.Model)
}

// run executes a command the way the program would, without batching.
func run(cmd tea.Cmd) {
	if cmd != nil {
		_ = cmd()
	}
}

func keys(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func samplePlan() domain.Plan {
	return domain.Plan{
		Signature: "sig-1",
		Action:    domain.ActionRemove,
		Targets:   []domain.Target{{Name: "python"}},
		Items: []domain.PlanItem{
			{Action: domain.ActionRemove, Name: "python", FromVersion: "3.12.1-1"},
		},
		Dependencies: []domain.DependencyNode{
			{Name: "python", Depth: 0, Direct: true},
			{Name: "certbot", InstalledVersion: "2.9.0-1", ReverseDependent: true, Direct: true, RequiredBy: []string{"python"}},
		},
		Services: []domain.ServiceImpact{
			{Unit: "certbot.timer", Providers: []string{"certbot"}, Active: true, RestartRequired: true},
		},
		Risk: domain.RiskScore{
			Score: 55,
			Level: domain.RiskHigh,
			Reasons: []domain.RiskReason{
				{Code: domain.RiskDependent, Weight: 25, Detail: "1 installed package depends on python"},
			},
		},
		Unavailable: map[domain.Section]string{domain.SectionSandbox: "no third-party packages"},
	}
}

func TestNewModel(t *testing.T) {
	m := tui.NewModel(nil, nil)

	require.Len(t, m.Sections, 9)
	assert.Equal(t, tui.SectionSummary, m.Sections[0].Name)
	assert.Equal(t, tui.SectionSession, m.Sections[len(m.Sections)-1].Name)
	assert.Equal(t, tui.StatusPending, m.SectionMap[tui.SectionPackages].Status)
	assert.Equal(t, tui.StatusEmpty, m.SectionMap[tui.SectionSession].Status)
	assert.True(t, m.FollowMode)
	assert.Nil(t, m.Init())
}

func TestModel_WindowSize(t *testing.T) {
	m, _ := newModel(t)

	expectedListWidth := int(float64(120) * 0.3)
	assert.Equal(t, 120-expectedListWidth-4, m.PaneWidth)
	assert.Positive(t, m.ListHeight)
	assert.Less(t, m.ListHeight, 40)
	assert.Positive(t, m.PaneHeight)
	for _, node := range m.Sections {
		assert.Equal(t, m.PaneWidth, node.Term.Width)
		assert.Equal(t, m.PaneHeight, node.Term.Height)
	}
}

func TestModel_Plan(t *testing.T) {
	m, _ := newModel(t)
	m = update(t, m, tui.MsgPlan{Plan: samplePlan()})

	require.NotNil(t, m.Plan)
	assert.Equal(t, domain.Signature("sig-1"), m.Plan.Signature)

	summary := m.SectionMap[tui.SectionSummary]
	assert.Equal(t, tui.StatusWarning, summary.Status)
	assert.Contains(t, summary.Term.View(), "risk high (score 55)")

	packages := m.SectionMap[tui.SectionPackages]
	assert.Equal(t, tui.StatusReady, packages.Status)
	assert.Equal(t, 1, packages.Count)

	deps := m.SectionMap[tui.SectionDependencies]
	assert.Equal(t, tui.StatusWarning, deps.Status)
	assert.Contains(t, deps.Term.View(), "certbot")

	assert.Equal(t, tui.StatusEmpty, m.SectionMap[tui.SectionConflicts].Status)
	assert.Equal(t, tui.StatusWarning, m.SectionMap[tui.SectionServices].Status)

	build := m.SectionMap[tui.SectionBuild]
	assert.Equal(t, tui.StatusUnavailable, build.Status)
	assert.Contains(t, build.Term.View(), "no third-party packages")
}

func TestModel_Navigation(t *testing.T) {
	m, _ := newModel(t)

	m = update(t, m, keys("j"))
	assert.Equal(t, 1, m.SelectedIdx)
	assert.False(t, m.FollowMode)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 2, m.SelectedIdx)

	m = update(t, m, keys("k"))
	m = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, m.SelectedIdx)

	for range len(m.Sections) + 2 {
		m = update(t, m, keys("j"))
	}
	assert.Equal(t, len(m.Sections)-1, m.SelectedIdx)
}

func TestModel_SlidingWindow(t *testing.T) {
	m, _ := newModel(t)
	m.ListHeight = 3

	for range 4 {
		m = update(t, m, keys("j"))
	}
	assert.Equal(t, 4, m.SelectedIdx)
	assert.Equal(t, 2, m.ListOffset)

	for range 3 {
		m = update(t, m, keys("k"))
	}
	assert.Equal(t, 1, m.SelectedIdx)
	assert.Equal(t, 1, m.ListOffset)
}

func TestModel_Execute(t *testing.T) {
	t.Run("waits for a plan", func(t *testing.T) {
		m, rec := newModel(t)
		m = update(t, m, keys("x"))
		assert.Empty(t, rec.calls)
		assert.True(t, m.StatusAlert)
		assert.Contains(t, m.StatusText, "not ready")
	})

	t.Run("runs the plan and follows the session", func(t *testing.T) {
		m, rec := newModel(t)
		m = update(t, m, tui.MsgPlan{Plan: samplePlan()})
		m = update(t, m, keys("x"))

		assert.Equal(t, []string{"execute"}, rec.calls)
		assert.Equal(t, tui.SectionSession, m.Sections[m.SelectedIdx].Name)
	})

	t.Run("blocking plan needs force", func(t *testing.T) {
		m, rec := newModel(t)
		plan := samplePlan()
		plan.Blocking = true
		m = update(t, m, tui.MsgPlan{Plan: plan})

		m = update(t, m, keys("x"))
		assert.Empty(t, rec.calls)
		assert.Contains(t, m.StatusText, "press X")

		_ = update(t, m, keys("X"))
		assert.Equal(t, []string{"execute force"}, rec.calls)
	})
}

func TestModel_Session(t *testing.T) {
	m, rec := newModel(t)
	m = update(t, m, tui.MsgPlan{Plan: samplePlan()})
	m = update(t, m, keys("j"))

	m = update(t, m, tui.MsgSessionStarted{Record: domain.SessionRecord{
		ID:   "s1",
		Argv: []string{"sudo", "pacman", "-R", "python"},
	}})
	assert.True(t, m.Running)
	session := m.SectionMap[tui.SectionSession]
	assert.Equal(t, tui.StatusRunning, session.Status)
	assert.Equal(t, tui.SectionPackages, m.Sections[m.SelectedIdx].Name, "manual selection is kept")

	m = update(t, m, tui.MsgSessionOutput{SessionID: "s1", Line: "checking dependencies..."})
	m = update(t, m, tui.MsgSessionOutput{SessionID: "s1", Line: "removing 10%"})
	m = update(t, m, tui.MsgSessionOutput{SessionID: "s1", Line: "removing 90%", Replace: true})
	m = update(t, m, tui.MsgSessionOutput{SessionID: "other", Line: "stray"})

	view := session.Term.View()
	assert.Contains(t, view, "$ sudo pacman -R python")
	assert.Contains(t, view, "checking dependencies...")
	assert.Contains(t, view, "removing 90%")
	assert.NotContains(t, view, "removing 10%")
	assert.NotContains(t, view, "stray")

	m = update(t, m, keys("q"))
	assert.True(t, m.StatusAlert, "quit is refused while running")

	m = update(t, m, keys("a"))
	assert.Equal(t, []string{"abort"}, rec.calls)

	m = update(t, m, tui.MsgSessionFinished{Record: domain.SessionRecord{
		ID:    "s1",
		State: domain.SessionAborted,
		Argv:  []string{"sudo", "pacman", "-R", "python"},
		Err:   domain.Classify(domain.KindCancelled, domain.ErrSessionAborted),
	}})
	assert.False(t, m.Running)
	assert.Equal(t, tui.StatusError, session.Status)
	assert.Contains(t, session.Term.View(), "aborted")

	_, cmd := m.Update(keys("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestModel_CtrlC(t *testing.T) {
	m, rec := newModel(t)
	m = update(t, m, tui.MsgSessionStarted{Record: domain.SessionRecord{ID: "s1"}})

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.Equal(t, []string{"abort"}, rec.calls)

	m = update(t, m, tui.MsgSessionFinished{Record: domain.SessionRecord{ID: "s1", State: domain.SessionCompleted}})
	assert.Equal(t, tui.StatusDone, m.SectionMap[tui.SectionSession].Status)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestModel_Credential(t *testing.T) {
	t.Run("submits a locked secret", func(t *testing.T) {
		m, rec := newModel(t)
		m = update(t, m, tui.MsgCredentialRequested{Request: domain.CredentialRequest{
			SessionID:  "s1",
			PromptText: "[sudo] password for me:",
			Attempt:    2,
		}})
		require.True(t, m.Prompting)
		assert.Equal(t, "[sudo] password for me: (attempt 2)", m.PromptText)

		for _, r := range "hunter2" {
			m = update(t, m, keys(string(r)))
		}
		assert.Empty(t, rec.calls, "typing is not forwarded")
		assert.NotContains(t, m.View(), "hunter2")

		m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
		assert.False(t, m.Prompting)
		assert.Empty(t, m.Prompt.Value())

		require.Len(t, rec.answers, 1)
		resp := rec.answers[0]
		defer resp.Destroy()
		assert.False(t, resp.Cancelled)
		require.NotNil(t, resp.Secret)
		assert.Equal(t, "hunter2", string(resp.Secret.Bytes()))
	})

	t.Run("escape cancels", func(t *testing.T) {
		m, rec := newModel(t)
		m = update(t, m, tui.MsgCredentialRequested{Request: domain.CredentialRequest{Purpose: domain.CredentialElevation}})
		assert.Equal(t, "elevation password:", m.PromptText)

		m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
		assert.False(t, m.Prompting)
		require.Len(t, rec.answers, 1)
		assert.True(t, rec.answers[0].Cancelled)
		assert.Nil(t, rec.answers[0].Secret)
	})

	t.Run("finished session closes the prompt", func(t *testing.T) {
		m, _ := newModel(t)
		m = update(t, m, tui.MsgCredentialRequested{Request: domain.CredentialRequest{SessionID: "s1"}})
		m = update(t, m, tui.MsgSessionFinished{Record: domain.SessionRecord{ID: "s1", State: domain.SessionFailed, Err: errors.New("boom")}})
		assert.False(t, m.Prompting)
	})
}

func TestModel_StatusAndDetails(t *testing.T) {
	m, rec := newModel(t)

	m = update(t, m, keys("r"))
	m = update(t, m, keys("i"))
	assert.Equal(t, []string{"refresh", "details"}, rec.calls)

	m = update(t, m, tui.MsgStatus{Text: "database changed", Alert: true})
	assert.Equal(t, "database changed", m.StatusText)
	assert.True(t, m.StatusAlert)

	m = update(t, m, tui.MsgDetails{
		Packages: []domain.Package{{Name: "vim", Version: "9.1-1", Description: "Vi Improved"}},
		Missing:  []string{"nope"},
	})
	details := m.SectionMap[tui.SectionDetails]
	assert.Equal(t, tui.StatusWarning, details.Status)
	assert.Contains(t, details.Term.View(), "Vi Improved")
	assert.Contains(t, details.Term.View(), "nope not found")

	m = update(t, m, tui.MsgDetails{Err: errors.New("aur unreachable")})
	assert.Equal(t, tui.StatusError, details.Status)
	assert.Contains(t, details.Term.View(), "aur unreachable")
}
