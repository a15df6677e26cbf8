package workers

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"go.trai.ch/pkgdeck/internal/core/domain"
	"go.trai.ch/pkgdeck/internal/core/ports"
	"golang.org/x/sync/errgroup"
)

// fileQueryLimit bounds concurrent file list queries.
const fileQueryLimit = 4

const (
	pacnewSuffix  = ".pacnew"
	pacsaveSuffix = ".pacsave"
)

// Files diffs the file lists of the targets against the installed system.
type Files struct {
	local ports.LocalDatabase
	repo  ports.Repository
}

// NewFiles creates the file-diff computation.
func NewFiles(local ports.LocalDatabase, repo ports.Repository) *Files {
	return &Files{local: local, repo: repo}
}

// Kind implements Computation.
func (*Files) Kind() domain.WorkKind { return domain.WorkFiles }

type packageFiles struct {
	changes []domain.FileChange
	note    string
}

// Compute implements Computation.
func (f *Files) Compute(ctx context.Context, item domain.WorkItem) (domain.Fragment, error) {
	report := &domain.FileReport{}

	pkgs, err := f.local.Installed(ctx)
	if err != nil {
		if !domain.IsKind(err, domain.KindParseError) {
			return nil, err
		}
		report.Incomplete = true
	}
	installed := domain.NewInstalled(pkgs)

	if item.Action == domain.ActionUpdate && len(item.Targets) == 0 {
		report.Notes = append(report.Notes, "file changes are listed for named packages only")
		return report, nil
	}

	results := make([]packageFiles, len(item.Targets))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(fileQueryLimit)
	for i, t := range item.Targets {
		if t.Source == domain.SourceThirdParty && item.Action != domain.ActionRemove {
			results[i].note = fmt.Sprintf("%s is built from source; its files are known only after the build", t.Name)
			continue
		}
		g.Go(func() error {
			res, err := f.diff(ctx, item.Action, t, installed)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, res := range results {
		report.Changes = append(report.Changes, res.changes...)
		if res.note != "" {
			report.Notes = append(report.Notes, res.note)
			report.Incomplete = true
		}
	}
	return report, nil
}

func (f *Files) diff(ctx context.Context, action domain.Action, t domain.Target, installed *domain.Installed) (packageFiles, error) {
	inst, isInstalled := installed.Get(t.Name)
	var backup []string
	if isInstalled {
		backup = inst.Backup
	}

	var local []string
	if isInstalled {
		files, err := f.local.InstalledFiles(ctx, t.Name)
		if err != nil {
			return packageFiles{}, err
		}
		local = files
	}

	if action == domain.ActionRemove {
		if !isInstalled {
			return packageFiles{note: fmt.Sprintf("%s is not installed", t.Name)}, nil
		}
		changes := make([]domain.FileChange, 0, len(local))
		for _, path := range local {
			c := domain.FileChange{Package: t.Name, Path: path, Kind: domain.FileRemoved}
			if slices.Contains(backup, path) {
				c.ConfigConflict = true
				c.PredictedSave = path + pacsaveSuffix
			}
			changes = append(changes, c)
		}
		return packageFiles{changes: changes}, nil
	}

	remote, err := f.repo.RemoteFiles(ctx, t.Name)
	if err != nil {
		if recoverable(err) {
			return packageFiles{note: fmt.Sprintf("file list of %s is unavailable: %v", t.Name, err)}, nil
		}
		return packageFiles{}, err
	}

	localSet := make(map[string]bool, len(local))
	for _, path := range local {
		localSet[path] = true
	}
	remoteSet := make(map[string]bool, len(remote))
	for _, path := range remote {
		remoteSet[path] = true
	}

	var changes []domain.FileChange
	for _, path := range remote {
		if !localSet[path] {
			changes = append(changes, domain.FileChange{Package: t.Name, Path: path, Kind: domain.FileNew})
			continue
		}
		c := domain.FileChange{Package: t.Name, Path: path, Kind: domain.FileChanged}
		if slices.Contains(backup, path) {
			c.ConfigConflict = true
			c.PredictedSave = path + pacnewSuffix
		}
		changes = append(changes, c)
	}
	for _, path := range local {
		if !remoteSet[path] {
			changes = append(changes, domain.FileChange{Package: t.Name, Path: path, Kind: domain.FileRemoved})
		}
	}
	slices.SortStableFunc(changes, func(a, b domain.FileChange) int {
		return cmp.Compare(a.Path, b.Path)
	})
	return packageFiles{changes: changes}, nil
}

// recoverable reports whether err only degrades one package instead of the whole section.
func recoverable(err error) bool {
	switch domain.KindOf(err) {
	case domain.KindNotFound, domain.KindTimeout, domain.KindFatal, domain.KindCancelled:
		return false
	default:
		return true
	}
}
