package executor

import "go.trai.ch/pkgdeck/internal/core/domain"

// Request is sent to the executor loop.
type Request interface {
	isRequest()
}

// StartRequest starts a session for Command. Plan, when set, is the plan the
// command carries out; a blocking plan needs Override.
type StartRequest struct {
	Command  domain.Command
	Plan     *domain.Plan
	Override bool
}

// SupplyCredential answers a CredentialRequested event.
type SupplyCredential struct {
	SessionID string
	Response  domain.CredentialResponse
}

// AbortRequest terminates an abortable session.
type AbortRequest struct {
	SessionID string
}

func (StartRequest) isRequest()     {}
func (SupplyCredential) isRequest() {}
func (AbortRequest) isRequest()     {}

// Event is published by the executor loop.
type Event interface {
	isEvent()
}

// Started is published once a session exists.
type Started struct {
	Record domain.SessionRecord
}

// Output is one framed line. Replace means it overwrote the previous line.
type Output struct {
	SessionID string
	Line      string
	Replace   bool
}

// StateChanged is published on every state transition.
type StateChanged struct {
	SessionID string
	From      domain.SessionState
	To        domain.SessionState
}

// CredentialRequested asks the front end for a secret.
type CredentialRequested struct {
	Request domain.CredentialRequest
}

// Finished is published when a session reaches a terminal state.
type Finished struct {
	Record domain.SessionRecord
}

// Rejected reports a request that could not be honoured.
type Rejected struct {
	SessionID string
	Err       error
}

func (Started) isEvent()             {}
func (Output) isEvent()              {}
func (StateChanged) isEvent()        {}
func (CredentialRequested) isEvent() {}
func (Finished) isEvent()            {}
func (Rejected) isEvent()            {}
