package dispatcher

import (
	"go.trai.ch/pkgdeck/internal/core/domain"
)

// Notification is published to observers through Notifications.
type Notification interface {
	isNotification()
}

// PlanReady carries a freshly assembled plan.
type PlanReady struct {
	Plan domain.Plan
}

// SessionStarted reports a new execution session.
type SessionStarted struct {
	Record domain.SessionRecord
}

// SessionOutput is one framed line of session output.
type SessionOutput struct {
	SessionID string
	Line      string
	Replace   bool
}

// CredentialRequested asks the UI for a secret.
type CredentialRequested struct {
	Request domain.CredentialRequest
}

// SessionFinished carries the final snapshot of a session.
type SessionFinished struct {
	Record domain.SessionRecord
}

// SessionRejected reports a start, credential or abort request the executor refused.
type SessionRejected struct {
	SessionID string
	Err       error
}

// StatusChanged carries the new status line. A nil Status means it was cleared.
type StatusChanged struct {
	Status *Status
}

// DetailsReady carries package metadata, or the error that prevented fetching it.
type DetailsReady struct {
	Packages []domain.Package
	Missing  []string
	Err      error
}

func (PlanReady) isNotification()           {}
func (SessionStarted) isNotification()      {}
func (SessionOutput) isNotification()       {}
func (CredentialRequested) isNotification() {}
func (SessionFinished) isNotification()     {}
func (SessionRejected) isNotification()     {}
func (StatusChanged) isNotification()       {}
func (DetailsReady) isNotification()        {}
