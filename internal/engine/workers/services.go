package workers

import (
	"context"
	"fmt"
	"path"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"go.trai.ch/pkgdeck/internal/core/domain"
	"go.trai.ch/pkgdeck/internal/core/ports"
)

// UnitPattern matches systemd service unit files shipped by packages.
const UnitPattern = "/{usr/lib,lib}/systemd/system/*.service"

// Services maps package-owned unit files to active systemd services.
type Services struct {
	local   ports.LocalDatabase
	repo    ports.Repository
	systemd ports.ServiceManager
}

// NewServices creates the service-impact computation.
func NewServices(local ports.LocalDatabase, repo ports.Repository, systemd ports.ServiceManager) *Services {
	return &Services{local: local, repo: repo, systemd: systemd}
}

// Kind implements Computation.
func (*Services) Kind() domain.WorkKind { return domain.WorkServices }

// Compute implements Computation.
func (s *Services) Compute(ctx context.Context, item domain.WorkItem) (domain.Fragment, error) {
	report := &domain.ServiceReport{}

	active, err := s.systemd.ActiveUnits(ctx)
	if err != nil {
		return nil, err
	}

	pkgs, err := s.local.Installed(ctx)
	if err != nil && !domain.IsKind(err, domain.KindParseError) {
		return nil, err
	}
	installed := domain.NewInstalled(pkgs)

	if item.Action == domain.ActionUpdate && len(item.Targets) == 0 {
		report.Notes = append(report.Notes, "service impact is listed for named packages only")
		return report, nil
	}

	owners := make(map[string][]string)
	var units []string
	inPlan := make(map[string]bool, len(item.Targets))
	for _, t := range item.Targets {
		inPlan[t.Name] = true

		files, note, err := s.files(ctx, item.Action, t, installed)
		if err != nil {
			return nil, err
		}
		if note != "" {
			report.Notes = append(report.Notes, note)
			continue
		}
		for _, f := range files {
			if !IsUnitFile(f) {
				continue
			}
			unit := path.Base(f)
			if _, seen := owners[unit]; !seen {
				units = append(units, unit)
			}
			if !slices.Contains(owners[unit], t.Name) {
				owners[unit] = append(owners[unit], t.Name)
			}
		}
	}

	for _, unit := range units {
		isActive := slices.Contains(active, unit)
		owned := slices.ContainsFunc(owners[unit], func(name string) bool { return inPlan[name] })
		report.Impacts = append(report.Impacts, domain.ServiceImpact{
			Unit:            unit,
			Providers:       owners[unit],
			Active:          isActive,
			RestartRequired: isActive && owned,
		})
	}
	return report, nil
}

// files returns the installed files of t, or the files it would install when it is not installed yet.
func (s *Services) files(ctx context.Context, action domain.Action, t domain.Target, installed *domain.Installed) ([]string, string, error) {
	if _, ok := installed.Get(t.Name); ok {
		files, err := s.local.InstalledFiles(ctx, t.Name)
		return files, "", err
	}
	if action == domain.ActionRemove {
		return nil, fmt.Sprintf("%s is not installed", t.Name), nil
	}
	if t.Source == domain.SourceThirdParty {
		return nil, fmt.Sprintf("units of %s are known only after the build", t.Name), nil
	}
	files, err := s.repo.RemoteFiles(ctx, t.Name)
	if err != nil && recoverable(err) {
		return nil, fmt.Sprintf("file list of %s is unavailable: %v", t.Name, err), nil
	}
	return files, "", err
}

// IsUnitFile reports whether file is a packaged systemd service unit.
func IsUnitFile(file string) bool {
	ok, err := doublestar.Match(UnitPattern, file)
	return err == nil && ok
}
