package dispatcher

import (
	"go.trai.ch/pkgdeck/internal/core/domain"
)

// Intent is a request from the UI layer. Intents are handled in the order they arrive.
type Intent interface {
	isIntent()
}

// Select starts preflight for an action on a set of targets.
type Select struct {
	Action  domain.Action
	Targets []domain.Target
}

// Refresh invalidates every cached fragment and resolves the current selection again.
type Refresh struct{}

// FetchDetails asks for package metadata.
type FetchDetails struct {
	Targets []domain.Target
}

// ExecutePlan runs Command against the current plan. Override allows a blocking plan.
type ExecutePlan struct {
	Command  domain.Command
	Override bool
}

// RunCommand runs a command that is not tied to a plan.
type RunCommand struct {
	Command domain.Command
}

// SupplyCredential answers the pending credential request of the active session.
type SupplyCredential struct {
	Response domain.CredentialResponse
}

// Abort terminates the active session.
type Abort struct{}

type snapshot struct {
	reply chan State
}

func (Select) isIntent()           {}
func (Refresh) isIntent()          {}
func (FetchDetails) isIntent()     {}
func (ExecutePlan) isIntent()      {}
func (RunCommand) isIntent()       {}
func (SupplyCredential) isIntent() {}
func (Abort) isIntent()            {}
func (snapshot) isIntent()         {}
