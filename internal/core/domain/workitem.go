package domain

import (
	"strings"
	"time"
)

// WorkKind names a worker category.
type WorkKind uint8

const (
	// WorkDependencies resolves the dependency closure, conflicts and reverse dependents.
	WorkDependencies WorkKind = iota + 1
	// WorkFiles diffs package file lists.
	WorkFiles
	// WorkServices maps package files to systemd units.
	WorkServices
	// WorkSandbox analyses third-party build manifests.
	WorkSandbox
	// WorkMetadata fetches package details.
	WorkMetadata
)

// PreflightKinds are the work kinds assembled into a Plan.
var PreflightKinds = []WorkKind{WorkDependencies, WorkFiles, WorkServices, WorkSandbox}

// AllWorkKinds lists every worker category.
var AllWorkKinds = []WorkKind{WorkDependencies, WorkFiles, WorkServices, WorkSandbox, WorkMetadata}

func (k WorkKind) String() string {
	switch k {
	case WorkDependencies:
		return "dependencies"
	case WorkFiles:
		return "files"
	case WorkServices:
		return "services"
	case WorkSandbox:
		return "sandbox"
	case WorkMetadata:
		return "metadata"
	default:
		return "unknown"
	}
}

// Action is the operation a plan performs.
type Action uint8

const (
	// ActionInstall installs packages.
	ActionInstall Action = iota + 1
	// ActionUpdate upgrades installed packages.
	ActionUpdate
	// ActionRemove removes packages.
	ActionRemove
)

func (a Action) String() string {
	switch a {
	case ActionInstall:
		return "install"
	case ActionUpdate:
		return "update"
	case ActionRemove:
		return "remove"
	default:
		return "none"
	}
}

// ParseAction maps a command word to an Action.
func ParseAction(s string) (Action, bool) {
	switch strings.ToLower(s) {
	case "install":
		return ActionInstall, true
	case "update", "upgrade":
		return ActionUpdate, true
	case "remove", "uninstall":
		return ActionRemove, true
	default:
		return 0, false
	}
}

// Source is where a package comes from.
type Source uint8

const (
	// SourceOfficial is a pre-built package from the official repositories.
	SourceOfficial Source = iota
	// SourceThirdParty is a package built from a third-party (AUR) recipe.
	SourceThirdParty
)

func (s Source) String() string {
	if s == SourceThirdParty {
		return "aur"
	}
	return "official"
}

// ThirdPartyPrefix marks a target name as coming from the third-party source.
const ThirdPartyPrefix = "aur/"

// Target is a package named by the user.
type Target struct {
	Name   string `json:"name"`
	Source Source `json:"source"`
}

// ParseTarget reads "aur/<name>" as third-party and anything else as official.
func ParseTarget(s string) Target {
	if name, ok := strings.CutPrefix(s, ThirdPartyPrefix); ok {
		return Target{Name: name, Source: SourceThirdParty}
	}
	return Target{Name: s, Source: SourceOfficial}
}

// ParseTargets parses every argument with ParseTarget.
func ParseTargets(args []string) []Target {
	targets := make([]Target, 0, len(args))
	for _, a := range args {
		if a == "" {
			continue
		}
		targets = append(targets, ParseTarget(a))
	}
	return targets
}

// TargetNames returns the names of targets in order.
func TargetNames(targets []Target) []string {
	names := make([]string, len(targets))
	for i, t := range targets {
		names[i] = t.Name
	}
	return names
}

// WorkItem is a request handed from the dispatcher to a worker.
type WorkItem struct {
	Kind         WorkKind
	Action       Action
	Targets      []Target
	Correlation  uint64
	IssuedAt     time.Time
	Slot         string
	StateVersion string
}

// Signature returns the cache key for the item.
func (w WorkItem) Signature() Signature {
	return NewSignature(w.Kind, w.Action, w.Targets, w.StateVersion)
}

// SlotKey returns the staleness slot, defaulting to the work kind.
func (w WorkItem) SlotKey() string {
	if w.Slot != "" {
		return w.Slot
	}
	return w.Kind.String()
}
