package workers

import (
	"context"

	"go.trai.ch/pkgdeck/internal/core/domain"
	"go.trai.ch/pkgdeck/internal/core/ports"
)

// Metadata fetches package details from the repositories and the AUR.
type Metadata struct {
	repo ports.Repository
	aur  ports.ThirdPartyIndex
}

// NewMetadata creates the metadata-fetch computation.
func NewMetadata(repo ports.Repository, aur ports.ThirdPartyIndex) *Metadata {
	return &Metadata{repo: repo, aur: aur}
}

// Kind implements Computation.
func (*Metadata) Kind() domain.WorkKind { return domain.WorkMetadata }

// Compute implements Computation.
func (m *Metadata) Compute(ctx context.Context, item domain.WorkItem) (domain.Fragment, error) {
	var official, third []string
	for _, t := range item.Targets {
		if t.Source == domain.SourceThirdParty {
			third = append(third, t.Name)
		} else {
			official = append(official, t.Name)
		}
	}

	report := &domain.MetadataReport{}
	found := make(map[string]bool, len(item.Targets))
	if len(official) > 0 {
		pkgs, err := m.repo.Lookup(ctx, official)
		if err != nil && !domain.IsKind(err, domain.KindParseError) {
			return nil, err
		}
		for _, p := range pkgs {
			found[p.Name] = true
			report.Packages = append(report.Packages, p)
		}
	}
	if len(third) > 0 {
		pkgs, err := m.aur.Info(ctx, third)
		if err != nil && !domain.IsKind(err, domain.KindParseError) {
			return nil, err
		}
		for _, p := range pkgs {
			found[p.Name] = true
			report.Packages = append(report.Packages, p)
		}
	}
	for _, t := range item.Targets {
		if !found[t.Name] {
			report.Missing = append(report.Missing, t.Name)
		}
	}
	return report, nil
}
