package dispatcher

import (
	"maps"
	"slices"
	"time"

	"go.trai.ch/pkgdeck/internal/core/domain"
	"go.trai.ch/pkgdeck/internal/engine/preflight"
)

// StatusLevel grades the status line.
type StatusLevel uint8

const (
	// StatusInfo is a neutral message.
	StatusInfo StatusLevel = iota
	// StatusWarn is a recoverable problem.
	StatusWarn
	// StatusError is a failure the user should see.
	StatusError
)

// Status is the transient one-line message shown to the user.
type Status struct {
	Text  string
	Level StatusLevel
	Until time.Time
}

// Selection is the preflight request a plan is being built for.
type Selection struct {
	Action  domain.Action
	Targets []domain.Target

	// Input collects the section results as they arrive.
	Input preflight.Input
}

// State is owned by the dispatcher loop. Observers only ever see copies.
type State struct {
	StateVersion string

	Selection *Selection
	Plan      *domain.Plan

	Details map[string]domain.Package
	Missing []string

	Session     *domain.SessionRecord
	LastSession *domain.SessionRecord
	Credential  *domain.CredentialRequest

	Status   *Status
	Errors   []error
	Disabled map[domain.WorkKind]error

	latest map[string]uint64
}

func newState(version string) *State {
	return &State{
		StateVersion: version,
		Details:      make(map[string]domain.Package),
		Disabled:     make(map[domain.WorkKind]error),
		latest:       make(map[string]uint64),
	}
}

// Latest returns the correlation id most recently submitted for slot.
func (s *State) Latest(slot string) uint64 {
	return s.latest[slot]
}

// Clone returns a deep copy.
func (s *State) Clone() State {
	c := State{
		StateVersion: s.StateVersion,
		Details:      maps.Clone(s.Details),
		Missing:      slices.Clone(s.Missing),
		Errors:       slices.Clone(s.Errors),
		Disabled:     maps.Clone(s.Disabled),
		latest:       maps.Clone(s.latest),
	}
	if s.Selection != nil {
		sel := *s.Selection
		sel.Targets = slices.Clone(sel.Targets)
		sel.Input.Targets = slices.Clone(sel.Input.Targets)
		c.Selection = &sel
	}
	if s.Plan != nil {
		plan := *s.Plan
		c.Plan = &plan
	}
	if s.Session != nil {
		rec := s.Session.Clone()
		c.Session = &rec
	}
	if s.LastSession != nil {
		rec := s.LastSession.Clone()
		c.LastSession = &rec
	}
	if s.Credential != nil {
		req := *s.Credential
		c.Credential = &req
	}
	if s.Status != nil {
		st := *s.Status
		c.Status = &st
	}
	return c
}
