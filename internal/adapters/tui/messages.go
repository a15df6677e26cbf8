package tui

import "go.trai.ch/pkgdeck/internal/core/domain"

// MsgPlan replaces the plan sections.
type MsgPlan struct {
	Plan domain.Plan
}

// MsgSessionStarted opens the session log.
type MsgSessionStarted struct {
	Record domain.SessionRecord
}

// MsgSessionOutput carries one framed line. Replace redraws the previous line.
type MsgSessionOutput struct {
	SessionID string
	Line      string
	Replace   bool
}

// MsgCredentialRequested opens the masked prompt.
type MsgCredentialRequested struct {
	Request domain.CredentialRequest
}

// MsgSessionFinished closes the session log.
type MsgSessionFinished struct {
	Record domain.SessionRecord
}

// MsgStatus sets the status line. An empty Text clears it.
type MsgStatus struct {
	Text  string
	Alert bool
}

// MsgDetails fills the package details section.
type MsgDetails struct {
	Packages []domain.Package
	Missing  []string
	Err      error
}
