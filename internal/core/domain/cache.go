package domain

import (
	"encoding/json"
	"time"

	"go.trai.ch/zerr"
)

// Fragment is an immutable worker payload stored in the cache.
type Fragment interface {
	FragmentKind() WorkKind
}

// CacheEntry is a stored fragment stamped with the generation it was written in.
type CacheEntry struct {
	Signature  Signature
	Payload    Fragment
	ComputedAt time.Time
	Generation uint64
}

// DependencyReport is the dependency-resolver payload.
type DependencyReport struct {
	Action     Action           `json:"action"`
	Items      []PlanItem       `json:"items"`
	Nodes      []DependencyNode `json:"nodes"`
	Conflicts  []ConflictRecord `json:"conflicts"`
	Incomplete bool             `json:"incomplete,omitempty"`
	Notes      []string         `json:"notes,omitempty"`
}

// FragmentKind implements Fragment.
func (*DependencyReport) FragmentKind() WorkKind { return WorkDependencies }

// FileReport is the file-diff payload.
type FileReport struct {
	Changes    []FileChange `json:"changes"`
	Incomplete bool         `json:"incomplete,omitempty"`
	Notes      []string     `json:"notes,omitempty"`
}

// FragmentKind implements Fragment.
func (*FileReport) FragmentKind() WorkKind { return WorkFiles }

// ServiceReport is the service-impact payload.
type ServiceReport struct {
	Impacts []ServiceImpact `json:"impacts"`
	Notes   []string        `json:"notes,omitempty"`
}

// FragmentKind implements Fragment.
func (*ServiceReport) FragmentKind() WorkKind { return WorkServices }

// SandboxReport is the sandbox-analysis payload.
type SandboxReport struct {
	Packages   []SandboxInfo `json:"packages"`
	Skipped    []string      `json:"skipped,omitempty"`
	Incomplete bool          `json:"incomplete,omitempty"`
	Notes      []string      `json:"notes,omitempty"`
}

// FragmentKind implements Fragment.
func (*SandboxReport) FragmentKind() WorkKind { return WorkSandbox }

// MetadataReport is the metadata-fetch payload.
type MetadataReport struct {
	Packages []Package `json:"packages"`
	Missing  []string  `json:"missing,omitempty"`
}

// FragmentKind implements Fragment.
func (*MetadataReport) FragmentKind() WorkKind { return WorkMetadata }

// EncodeFragment serializes a fragment for persistence.
func EncodeFragment(f Fragment) ([]byte, error) {
	data, err := json.Marshal(f)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, ErrCacheMarshalFailed.Error()), "kind", f.FragmentKind().String())
	}
	return data, nil
}

// DecodeFragment restores a fragment of the given kind.
func DecodeFragment(kind WorkKind, data []byte) (Fragment, error) {
	var f Fragment
	switch kind {
	case WorkDependencies:
		f = &DependencyReport{}
	case WorkFiles:
		f = &FileReport{}
	case WorkServices:
		f = &ServiceReport{}
	case WorkSandbox:
		f = &SandboxReport{}
	case WorkMetadata:
		f = &MetadataReport{}
	default:
		return nil, zerr.With(ErrUnknownWorkKind, "kind", int(kind))
	}
	if err := json.Unmarshal(data, f); err != nil {
		return nil, zerr.Wrap(err, ErrCacheReadFailed.Error())
	}
	return f, nil
}
