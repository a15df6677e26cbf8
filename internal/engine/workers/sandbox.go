package workers

import (
	"context"
	"errors"
	"fmt"

	"go.trai.ch/pkgdeck/internal/core/domain"
	"go.trai.ch/pkgdeck/internal/core/ports"
)

// Sandbox analyses the build manifests of third-party targets.
type Sandbox struct {
	local ports.LocalDatabase
	aur   ports.ThirdPartyIndex
}

// NewSandbox creates the sandbox-analysis computation.
func NewSandbox(local ports.LocalDatabase, aur ports.ThirdPartyIndex) *Sandbox {
	return &Sandbox{local: local, aur: aur}
}

// Kind implements Computation.
func (*Sandbox) Kind() domain.WorkKind { return domain.WorkSandbox }

// Compute implements Computation. Official targets are never analysed.
func (s *Sandbox) Compute(ctx context.Context, item domain.WorkItem) (domain.Fragment, error) {
	report := &domain.SandboxReport{}

	var third []domain.Target
	for _, t := range item.Targets {
		if t.Source != domain.SourceThirdParty {
			report.Skipped = append(report.Skipped, t.Name)
			continue
		}
		third = append(third, t)
	}
	if len(third) == 0 || item.Action == domain.ActionRemove {
		return report, nil
	}

	pkgs, err := s.local.Installed(ctx)
	if err != nil {
		if !domain.IsKind(err, domain.KindParseError) {
			return nil, err
		}
		report.Incomplete = true
	}
	installed := domain.NewInstalled(pkgs)

	for _, t := range third {
		manifest, err := s.aur.BuildInfo(ctx, t.Name)
		switch {
		case err == nil:
		case errors.Is(err, domain.ErrPackageNotFound):
			report.Notes = append(report.Notes, fmt.Sprintf("no build manifest for %s", t.Name))
			continue
		case domain.IsKind(err, domain.KindParseError):
			report.Incomplete = true
			report.Notes = append(report.Notes, fmt.Sprintf("build manifest of %s could not be read", t.Name))
			continue
		default:
			return nil, err
		}

		info := domain.SandboxInfo{Package: t.Name}
		add := func(kind domain.BuildDependencyKind, exprs []string) {
			for _, expr := range exprs {
				dep := domain.ParseDependency(expr)
				if dep.Name == "" {
					continue
				}
				bd := domain.BuildDependency{Name: dep.Name, Kind: kind}
				if inst, ok := installed.Provider(dep.Name); ok {
					bd.Installed = true
					bd.Version = inst.Version
				}
				info.Dependencies = append(info.Dependencies, bd)
			}
		}
		add(domain.BuildDepends, manifest.Depends)
		add(domain.BuildMakeDepends, manifest.MakeDepends)
		add(domain.BuildCheckDepends, manifest.CheckDepends)
		add(domain.BuildOptDepends, manifest.OptDepends)

		report.Packages = append(report.Packages, info)
	}
	return report, nil
}
