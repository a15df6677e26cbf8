package domain

import (
	"slices"
	"strings"
	"time"
)

// SessionState is a state of the execution state machine.
type SessionState uint8

const (
	// SessionIdle has not started.
	SessionIdle SessionState = iota
	// SessionRunning is streaming output.
	SessionRunning
	// SessionWaitingForCredential is paused on a prompt.
	SessionWaitingForCredential
	// SessionCompleted exited successfully.
	SessionCompleted
	// SessionFailed exited with an error.
	SessionFailed
	// SessionAborted was terminated by the user.
	SessionAborted
)

func (s SessionState) String() string {
	switch s {
	case SessionIdle:
		return "idle"
	case SessionRunning:
		return "running"
	case SessionWaitingForCredential:
		return "waiting-for-credential"
	case SessionCompleted:
		return "completed"
	case SessionFailed:
		return "failed"
	case SessionAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions are possible.
func (s SessionState) Terminal() bool {
	return s == SessionCompleted || s == SessionFailed || s == SessionAborted
}

// CanTransition reports whether the state machine allows moving from s to next.
func (s SessionState) CanTransition(next SessionState) bool {
	switch s {
	case SessionIdle:
		return next == SessionRunning
	case SessionRunning:
		return next == SessionWaitingForCredential || next.Terminal()
	case SessionWaitingForCredential:
		return next == SessionRunning || next.Terminal()
	default:
		return false
	}
}

// DryRunPrefix starts the synthetic log line of a dry run.
const DryRunPrefix = "DRY RUN: "

// DryRunLine returns the log line for a dry run of argv.
func DryRunLine(argv []string) string {
	return DryRunPrefix + strings.Join(argv, " ")
}

// LogLine is one framed chunk of session output.
type LogLine struct {
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// SessionRecord is a read-only snapshot of an execution session.
type SessionRecord struct {
	ID            string       `json:"id"`
	State         SessionState `json:"state"`
	Command       Command      `json:"command"`
	Argv          []string     `json:"argv"`
	PlanSignature Signature    `json:"plan_signature,omitempty"`
	Log           []LogLine    `json:"log"`
	ExitStatus    *int         `json:"exit_status,omitempty"`
	DryRun        bool         `json:"dry_run"`
	Abortable     bool         `json:"abortable"`
	StartedAt     time.Time    `json:"started_at"`
	FinishedAt    time.Time    `json:"finished_at"`
	Err           error        `json:"-"`
}

// Clone returns a deep copy.
func (r SessionRecord) Clone() SessionRecord {
	out := r
	out.Argv = slices.Clone(r.Argv)
	out.Command = r.Command.Clone()
	out.Log = slices.Clone(r.Log)
	if r.ExitStatus != nil {
		code := *r.ExitStatus
		out.ExitStatus = &code
	}
	return out
}

// Lines returns the log text in order.
func (r SessionRecord) Lines() []string {
	out := make([]string, len(r.Log))
	for i, l := range r.Log {
		out[i] = l.Text
	}
	return out
}
