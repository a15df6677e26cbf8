package tui

import (
	"context"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.trai.ch/pkgdeck/internal/core/domain"
)

// Renderer runs the Bubble Tea program and forwards engine events to it.
type Renderer struct {
	program *tea.Program
	model   *Model
	errCh   chan error
}

// NewRenderer creates a Renderer for model.
func NewRenderer(model *Model, opts ...tea.ProgramOption) *Renderer {
	return &Renderer{
		program: tea.NewProgram(model, opts...),
		model:   model,
		errCh:   make(chan error, 1),
	}
}

// Start launches the program in a background goroutine.
func (r *Renderer) Start(_ context.Context) error {
	go func() {
		_, err := r.program.Run()
		r.errCh <- err
	}()
	return nil
}

// Stop asks the program to quit.
func (r *Renderer) Stop() error {
	r.program.Quit()
	return nil
}

// Wait blocks until the program has terminated.
func (r *Renderer) Wait() error {
	return <-r.errCh
}

// OnPlan shows a new plan.
func (r *Renderer) OnPlan(plan domain.Plan) {
	r.program.Send(MsgPlan{Plan: plan})
}

// OnSessionStarted opens the session log.
func (r *Renderer) OnSessionStarted(rec domain.SessionRecord) {
	r.program.Send(MsgSessionStarted{Record: rec})
}

// OnSessionOutput appends a line to the session log.
func (r *Renderer) OnSessionOutput(sessionID, line string, replace bool) {
	r.program.Send(MsgSessionOutput{SessionID: sessionID, Line: line, Replace: replace})
}

// OnCredentialRequested opens the password prompt.
func (r *Renderer) OnCredentialRequested(req domain.CredentialRequest) {
	r.program.Send(MsgCredentialRequested{Request: req})
}

// OnSessionFinished closes the session log.
func (r *Renderer) OnSessionFinished(rec domain.SessionRecord) {
	r.program.Send(MsgSessionFinished{Record: rec})
}

// OnStatus sets the status line.
func (r *Renderer) OnStatus(text string, alert bool) {
	r.program.Send(MsgStatus{Text: text, Alert: alert})
}

// OnDetails shows package metadata.
func (r *Renderer) OnDetails(pkgs []domain.Package, missing []string, err error) {
	r.program.Send(MsgDetails{Packages: pkgs, Missing: missing, Err: err})
}

// Program returns the underlying tea.Program for testing.
func (r *Renderer) Program() *tea.Program {
	return r.program
}

// Launcher creates a Renderer per interactive run.
type Launcher struct {
	in   io.Reader
	out  io.Writer
	opts []tea.ProgramOption
}

// NewLauncher creates a Launcher drawing to out. Nil streams mean the terminal and stderr.
func NewLauncher(in io.Reader, out io.Writer, opts ...tea.ProgramOption) *Launcher {
	if out == nil {
		out = os.Stderr
	}
	return &Launcher{in: in, out: out, opts: opts}
}

// Launch builds a full screen Renderer that reports to ctrl.
func (l *Launcher) Launch(ctrl Controller) *Renderer {
	opts := []tea.ProgramOption{tea.WithOutput(l.out), tea.WithAltScreen()}
	if l.in != nil {
		opts = append(opts, tea.WithInput(l.in))
	}
	opts = append(opts, l.opts...)
	return NewRenderer(NewModel(l.out, ctrl), opts...)
}
