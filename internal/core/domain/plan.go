package domain

// PlanItem is one package operation of a plan.
type PlanItem struct {
	Action      Action `json:"action"`
	Name        string `json:"name"`
	FromVersion string `json:"from_version,omitempty"`
	ToVersion   string `json:"to_version,omitempty"`
	Source      Source `json:"source"`
}

// DependencyStatus describes where a dependency stands relative to the installed set.
type DependencyStatus uint8

const (
	// DependencyInstalled is already installed and satisfied.
	DependencyInstalled DependencyStatus = iota
	// DependencyToInstall is not installed and will be.
	DependencyToInstall
	// DependencyToUpgrade is installed at an older version.
	DependencyToUpgrade
	// DependencyMissing cannot be found in any source.
	DependencyMissing
	// DependencyAffected is an installed package that depends on a removal target.
	DependencyAffected
)

func (s DependencyStatus) String() string {
	switch s {
	case DependencyInstalled:
		return "installed"
	case DependencyToInstall:
		return "to-install"
	case DependencyToUpgrade:
		return "to-upgrade"
	case DependencyMissing:
		return "missing"
	case DependencyAffected:
		return "affected"
	default:
		return "unknown"
	}
}

// DependencyNode is one node of the dependency closure or reverse-dependent set.
type DependencyNode struct {
	Name             string           `json:"name"`
	Version          string           `json:"version,omitempty"`
	InstalledVersion string           `json:"installed_version,omitempty"`
	Status           DependencyStatus `json:"status"`
	Source           Source           `json:"source"`
	RequiredBy       []string         `json:"required_by,omitempty"`
	Depth            int              `json:"depth"`
	ReverseDependent bool             `json:"reverse_dependent,omitempty"`
	Direct           bool             `json:"direct,omitempty"`
}

// ConflictOrigin names the signal that declared a conflict.
type ConflictOrigin uint8

const (
	// OriginLocalQuery is metadata of an installed package.
	OriginLocalQuery ConflictOrigin = iota
	// OriginSourceMetadata is a repository or third-party manifest.
	OriginSourceMetadata
)

func (o ConflictOrigin) String() string {
	if o == OriginSourceMetadata {
		return "source-metadata"
	}
	return "local-query"
}

// ConflictRecord is a pair of packages that cannot be installed together.
type ConflictRecord struct {
	Package         string         `json:"package"`
	ConflictingWith string         `json:"conflicting_with"`
	Origin          ConflictOrigin `json:"origin"`
}

// ServiceImpact is a systemd unit shipped by a planned package.
type ServiceImpact struct {
	Unit            string   `json:"unit"`
	Providers       []string `json:"providers"`
	Active          bool     `json:"active"`
	RestartRequired bool     `json:"restart_required"`
}

// FileChangeKind classifies a file difference.
type FileChangeKind uint8

const (
	// FileNew is added by the operation.
	FileNew FileChangeKind = iota
	// FileChanged exists before and after.
	FileChanged
	// FileRemoved disappears.
	FileRemoved
)

func (k FileChangeKind) String() string {
	switch k {
	case FileNew:
		return "new"
	case FileChanged:
		return "changed"
	default:
		return "removed"
	}
}

// FileChange is one file touched by a planned package.
type FileChange struct {
	Package        string         `json:"package"`
	Path           string         `json:"path"`
	Kind           FileChangeKind `json:"kind"`
	ConfigConflict bool           `json:"config_conflict,omitempty"`
	PredictedSave  string         `json:"predicted_save,omitempty"`
}

// BuildDependencyKind is the .SRCINFO array a dependency came from.
type BuildDependencyKind uint8

const (
	// BuildDepends is a runtime dependency.
	BuildDepends BuildDependencyKind = iota
	// BuildMakeDepends is needed only while building.
	BuildMakeDepends
	// BuildCheckDepends is needed only while testing.
	BuildCheckDepends
	// BuildOptDepends is optional.
	BuildOptDepends
)

func (k BuildDependencyKind) String() string {
	switch k {
	case BuildMakeDepends:
		return "makedepends"
	case BuildCheckDepends:
		return "checkdepends"
	case BuildOptDepends:
		return "optdepends"
	default:
		return "depends"
	}
}

// BuildDependency is a third-party build dependency and whether it is present.
type BuildDependency struct {
	Name      string              `json:"name"`
	Kind      BuildDependencyKind `json:"kind"`
	Installed bool                `json:"installed"`
	Version   string              `json:"version,omitempty"`
}

// SandboxInfo is the build analysis of one third-party package.
type SandboxInfo struct {
	Package      string            `json:"package"`
	Dependencies []BuildDependency `json:"dependencies"`
}

// Missing counts dependencies that are not installed, excluding optional ones.
func (s SandboxInfo) Missing() int {
	n := 0
	for _, d := range s.Dependencies {
		if !d.Installed && d.Kind != BuildOptDepends {
			n++
		}
	}
	return n
}

// RiskLevel is the bucketed risk score.
type RiskLevel uint8

const (
	// RiskLow is a routine operation.
	RiskLow RiskLevel = iota
	// RiskMedium needs attention.
	RiskMedium
	// RiskHigh can break the system.
	RiskHigh
)

func (l RiskLevel) String() string {
	switch l {
	case RiskMedium:
		return "medium"
	case RiskHigh:
		return "high"
	default:
		return "low"
	}
}

// RiskReasonCode names a risk contribution.
type RiskReasonCode string

const (
	// RiskCorePackage is a core system package in the plan.
	RiskCorePackage RiskReasonCode = "core_package"
	// RiskMajorBump is an increase of the first version segment.
	RiskMajorBump RiskReasonCode = "major_version_bump"
	// RiskThirdParty is a third-party package in the plan.
	RiskThirdParty RiskReasonCode = "third_party_package"
	// RiskConfigConflict is a predicted .pacnew or .pacsave file.
	RiskConfigConflict RiskReasonCode = "config_conflict"
	// RiskServiceRestart is an active unit needing restart.
	RiskServiceRestart RiskReasonCode = "service_restart"
	// RiskDependent is an installed package depending on a removal target.
	RiskDependent RiskReasonCode = "dependent_package"
)

// RiskReason is one explained contribution to the score.
type RiskReason struct {
	Code   RiskReasonCode `json:"code"`
	Weight int            `json:"weight"`
	Detail string         `json:"detail"`
}

// RiskScore is the additive score and its reasons.
type RiskScore struct {
	Score   int          `json:"score"`
	Level   RiskLevel    `json:"level"`
	Reasons []RiskReason `json:"reasons"`
}

// Count returns how many reasons carry the given code.
func (r RiskScore) Count(code RiskReasonCode) int {
	n := 0
	for _, reason := range r.Reasons {
		if reason.Code == code {
			n++
		}
	}
	return n
}

// Section names a part of a plan produced by one worker.
type Section string

const (
	// SectionDependencies holds items, dependency nodes and conflicts.
	SectionDependencies Section = "dependencies"
	// SectionFiles holds file changes.
	SectionFiles Section = "files"
	// SectionServices holds service impact.
	SectionServices Section = "services"
	// SectionSandbox holds third-party build analysis.
	SectionSandbox Section = "sandbox"
)

// SectionFor maps a preflight work kind to its plan section.
func SectionFor(kind WorkKind) Section {
	switch kind {
	case WorkFiles:
		return SectionFiles
	case WorkServices:
		return SectionServices
	case WorkSandbox:
		return SectionSandbox
	default:
		return SectionDependencies
	}
}

// Plan is the immutable result of preflight resolution.
type Plan struct {
	Signature    Signature          `json:"signature"`
	Action       Action             `json:"action"`
	Targets      []Target           `json:"targets"`
	Items        []PlanItem         `json:"items"`
	Dependencies []DependencyNode   `json:"dependencies"`
	Conflicts    []ConflictRecord   `json:"conflicts"`
	Services     []ServiceImpact    `json:"services"`
	Files        []FileChange       `json:"files"`
	Sandbox      []SandboxInfo      `json:"sandbox"`
	Risk         RiskScore          `json:"risk"`
	Blocking     bool               `json:"blocking"`
	Incomplete   bool               `json:"incomplete"`
	Unavailable  map[Section]string `json:"unavailable,omitempty"`
	Notes        []string           `json:"notes,omitempty"`
}

// IsUnavailable reports whether a section could not be computed.
func (p *Plan) IsUnavailable(s Section) bool {
	_, ok := p.Unavailable[s]
	return ok
}

// ReverseDependents returns the installed packages that directly declare a
// dependency on a removal target. Transitive dependents are not included.
func (p *Plan) ReverseDependents() []DependencyNode {
	var out []DependencyNode
	for _, n := range p.Dependencies {
		if n.ReverseDependent && n.Direct {
			out = append(out, n)
		}
	}
	return out
}
