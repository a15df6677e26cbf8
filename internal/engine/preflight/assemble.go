// Package preflight assembles worker fragments into a scored Plan.
package preflight

import (
	"errors"

	"go.trai.ch/pkgdeck/internal/core/domain"
)

// SectionResult is what one preflight worker answered: a payload or an error.
type SectionResult struct {
	Signature domain.Signature
	Payload   domain.Fragment
	Err       error
}

// Resolved reports whether the worker has answered.
func (r SectionResult) Resolved() bool {
	return r.Payload != nil || r.Err != nil
}

// Input is everything Assemble needs.
type Input struct {
	Action  domain.Action
	Targets []domain.Target

	Dependencies SectionResult
	Files        SectionResult
	Services     SectionResult
	Sandbox      SectionResult

	Rules Rules
}

// Section returns the result for a preflight work kind.
func (in *Input) Section(kind domain.WorkKind) *SectionResult {
	switch kind {
	case domain.WorkDependencies:
		return &in.Dependencies
	case domain.WorkFiles:
		return &in.Files
	case domain.WorkServices:
		return &in.Services
	case domain.WorkSandbox:
		return &in.Sandbox
	default:
		return nil
	}
}

// Complete reports whether all four sections have answered.
func (in *Input) Complete() bool {
	return in.Dependencies.Resolved() && in.Files.Resolved() &&
		in.Services.Resolved() && in.Sandbox.Resolved()
}

// Assemble builds the Plan. It has no side effects: equal inputs give equal plans.
func Assemble(in Input) domain.Plan {
	plan := domain.Plan{
		Signature: domain.CombineSignatures(
			in.Dependencies.Signature,
			in.Files.Signature,
			in.Services.Signature,
			in.Sandbox.Signature,
		),
		Action:  in.Action,
		Targets: append([]domain.Target(nil), in.Targets...),
	}

	if deps, ok := fragment[*domain.DependencyReport](&plan, domain.SectionDependencies, in.Dependencies); ok {
		plan.Items = deps.Items
		plan.Dependencies = deps.Nodes
		plan.Conflicts = deps.Conflicts
		plan.Incomplete = plan.Incomplete || deps.Incomplete
		plan.Notes = append(plan.Notes, deps.Notes...)
	}
	if files, ok := fragment[*domain.FileReport](&plan, domain.SectionFiles, in.Files); ok {
		plan.Files = files.Changes
		plan.Incomplete = plan.Incomplete || files.Incomplete
		plan.Notes = append(plan.Notes, files.Notes...)
	}
	if services, ok := fragment[*domain.ServiceReport](&plan, domain.SectionServices, in.Services); ok {
		plan.Services = services.Impacts
		plan.Notes = append(plan.Notes, services.Notes...)
	}
	if sandbox, ok := fragment[*domain.SandboxReport](&plan, domain.SectionSandbox, in.Sandbox); ok {
		plan.Sandbox = sandbox.Packages
		plan.Incomplete = plan.Incomplete || sandbox.Incomplete
		plan.Notes = append(plan.Notes, sandbox.Notes...)
	}

	plan.Blocking = len(plan.Conflicts) > 0
	plan.Risk = Score(&plan, in.Rules)
	return plan
}

// fragment extracts a typed payload. A failed, missing or mistyped answer
// records the section as unavailable.
func fragment[T domain.Fragment](plan *domain.Plan, section domain.Section, res SectionResult) (T, bool) {
	var zero T
	if res.Err != nil {
		markUnavailable(plan, section, res.Err)
		return zero, false
	}
	if res.Payload == nil {
		markUnavailable(plan, section, domain.ErrPlanIncomplete)
		plan.Incomplete = true
		return zero, false
	}
	payload, ok := res.Payload.(T)
	if !ok {
		markUnavailable(plan, section, domain.ErrUnknownWorkKind)
		return zero, false
	}
	return payload, true
}

func markUnavailable(plan *domain.Plan, section domain.Section, err error) {
	if plan.Unavailable == nil {
		plan.Unavailable = make(map[domain.Section]string)
	}
	plan.Unavailable[section] = Reason(err)
	if domain.IsKind(err, domain.KindParseError) {
		plan.Incomplete = true
	}
}

type messager interface {
	Message() string
}

// Reason returns the first descriptive message in err's chain.
func Reason(err error) string {
	for current := err; current != nil; current = errors.Unwrap(current) {
		if m, ok := current.(messager); ok && m.Message() != "" {
			return m.Message()
		}
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
