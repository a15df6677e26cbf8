package dispatcher

import (
	"go.trai.ch/pkgdeck/internal/core/domain"
	"go.trai.ch/pkgdeck/internal/engine/preflight"
	"go.trai.ch/pkgdeck/internal/engine/workers"
)

// Applier folds one worker category's results into the state.
type Applier interface {
	// Relevant reports whether res is the answer to the latest request for its slot.
	Relevant(s *State, res workers.Result) bool
	// Apply records res. It is only called for relevant results.
	Apply(s *State, res workers.Result)
}

func latest(s *State, res workers.Result) bool {
	return res.Correlation != 0 && s.latest[res.Slot] == res.Correlation
}

// sectionApplier stores a preflight section of the current selection.
type sectionApplier struct {
	kind domain.WorkKind
}

func (a sectionApplier) Relevant(s *State, res workers.Result) bool {
	return s.Selection != nil && latest(s, res)
}

func (a sectionApplier) Apply(s *State, res workers.Result) {
	*s.Selection.Input.Section(a.kind) = preflight.SectionResult{
		Signature: res.Signature,
		Payload:   res.Payload,
		Err:       res.Err,
	}
}

// metadataApplier merges package details.
type metadataApplier struct{}

func (metadataApplier) Relevant(s *State, res workers.Result) bool {
	return latest(s, res)
}

func (metadataApplier) Apply(s *State, res workers.Result) {
	report, ok := res.Payload.(*domain.MetadataReport)
	if !ok {
		return
	}
	for _, p := range report.Packages {
		s.Details[p.Name] = p
	}
	s.Missing = append(s.Missing[:0], report.Missing...)
}

func defaultAppliers() map[domain.WorkKind]Applier {
	appliers := map[domain.WorkKind]Applier{domain.WorkMetadata: metadataApplier{}}
	for _, kind := range domain.PreflightKinds {
		appliers[kind] = sectionApplier{kind: kind}
	}
	return appliers
}
