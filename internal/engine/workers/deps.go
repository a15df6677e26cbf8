package workers

import (
	"context"
	"fmt"
	"slices"

	"go.trai.ch/pkgdeck/internal/core/domain"
	"go.trai.ch/pkgdeck/internal/core/ports"
)

// Dependencies resolves the dependency closure, conflicts and reverse dependents.
type Dependencies struct {
	local ports.LocalDatabase
	repo  ports.Repository
	aur   ports.ThirdPartyIndex
}

// NewDependencies creates the dependency resolver.
func NewDependencies(local ports.LocalDatabase, repo ports.Repository, aur ports.ThirdPartyIndex) *Dependencies {
	return &Dependencies{local: local, repo: repo, aur: aur}
}

// Kind implements Computation.
func (*Dependencies) Kind() domain.WorkKind { return domain.WorkDependencies }

// Compute implements Computation.
func (d *Dependencies) Compute(ctx context.Context, item domain.WorkItem) (domain.Fragment, error) {
	report := &domain.DependencyReport{Action: item.Action}

	pkgs, err := d.local.Installed(ctx)
	if err != nil {
		if !domain.IsKind(err, domain.KindParseError) {
			return nil, err
		}
		report.Incomplete = true
		report.Notes = append(report.Notes, "some installed packages could not be read")
	}
	installed := domain.NewInstalled(pkgs)

	if item.Action == domain.ActionRemove {
		d.reverse(installed, item.Targets, report)
		return report, nil
	}

	r := &resolution{
		d:         d,
		installed: installed,
		report:    report,
		nodes:     make(map[string]int),
		planned:   make(map[string]domain.Package),
	}
	if err := r.run(ctx, item); err != nil {
		return nil, err
	}
	report.Conflicts = conflicts(installed, r.order, r.planned)
	return report, nil
}

// resolution is the state of one Install or Update closure.
type resolution struct {
	d         *Dependencies
	installed *domain.Installed
	report    *domain.DependencyReport

	nodes   map[string]int
	planned map[string]domain.Package
	order   []string
}

func (r *resolution) run(ctx context.Context, item domain.WorkItem) error {
	targets := item.Targets
	if item.Action == domain.ActionUpdate && len(targets) == 0 {
		r.installed.Each(func(p *domain.Package) {
			targets = append(targets, domain.Target{Name: p.Name, Source: domain.SourceOfficial})
		})
	}
	fullUpgrade := item.Action == domain.ActionUpdate && len(item.Targets) == 0

	found, err := r.fetchTargets(ctx, targets)
	if err != nil {
		return err
	}

	var next []string
	for _, t := range targets {
		cand, ok := found[t.Name]
		if !ok {
			if fullUpgrade {
				// Foreign packages are not in the sync repositories.
				continue
			}
			r.addNode(domain.DependencyNode{Name: t.Name, Status: domain.DependencyMissing, Source: t.Source})
			r.report.Notes = append(r.report.Notes, fmt.Sprintf("target %s was not found", t.Name))
			continue
		}

		status := domain.DependencyToInstall
		from := ""
		if inst, ok := r.installed.Get(t.Name); ok {
			from = inst.Version
			status = domain.DependencyInstalled
			if domain.CompareVersions(cand.Version, inst.Version) > 0 {
				status = domain.DependencyToUpgrade
			}
		}
		if fullUpgrade && status != domain.DependencyToUpgrade {
			continue
		}

		r.addNode(domain.DependencyNode{
			Name:             cand.Name,
			Version:          cand.Version,
			InstalledVersion: from,
			Status:           status,
			Source:           cand.Source,
		})
		r.report.Items = append(r.report.Items, domain.PlanItem{
			Action:      item.Action,
			Name:        cand.Name,
			FromVersion: from,
			ToVersion:   cand.Version,
			Source:      cand.Source,
		})
		r.plan(cand)
		next = append(next, cand.Name)
	}

	for depth := 1; len(next) > 0; depth++ {
		next, err = r.expand(ctx, next, depth)
		if err != nil {
			return err
		}
	}
	return nil
}

// fetchTargets looks up official targets in the repositories and third-party
// targets in the AUR.
func (r *resolution) fetchTargets(ctx context.Context, targets []domain.Target) (map[string]domain.Package, error) {
	var official, third []string
	for _, t := range targets {
		if t.Source == domain.SourceThirdParty {
			third = append(third, t.Name)
		} else {
			official = append(official, t.Name)
		}
	}

	found := make(map[string]domain.Package, len(targets))
	if len(official) > 0 {
		pkgs, err := r.d.repo.Lookup(ctx, official)
		if err := r.tolerate(err); err != nil {
			return nil, err
		}
		for _, p := range pkgs {
			found[p.Name] = p
		}
	}
	if len(third) > 0 {
		pkgs, err := r.d.aur.Info(ctx, third)
		if err := r.tolerate(err); err != nil {
			return nil, err
		}
		for _, p := range pkgs {
			found[p.Name] = p
		}
	}
	return found, nil
}

// expand resolves the dependencies of the given planned packages and returns
// the packages newly added to the plan.
func (r *resolution) expand(ctx context.Context, parents []string, depth int) ([]string, error) {
	requiredBy := make(map[string][]string)
	var wanted []string

	for _, parent := range parents {
		p := r.planned[parent]
		for _, expr := range slices.Concat(p.Depends, p.MakeDepends) {
			dep := domain.ParseDependency(expr)
			if dep.Name == "" {
				continue
			}
			if idx, seen := r.nodes[dep.Name]; seen {
				n := &r.report.Nodes[idx]
				if n.Depth > 0 && !slices.Contains(n.RequiredBy, parent) {
					n.RequiredBy = append(n.RequiredBy, parent)
				}
				continue
			}
			if r.providedByPlan(dep.Name) {
				continue
			}
			if inst, ok := r.installed.Provider(dep.Name); ok && satisfiesInstalled(inst, dep) {
				r.addNode(domain.DependencyNode{
					Name:             inst.Name,
					InstalledVersion: inst.Version,
					Status:           domain.DependencyInstalled,
					Source:           inst.Source,
					RequiredBy:       []string{parent},
					Depth:            depth,
				})
				r.alias(dep.Name, inst.Name)
				continue
			}
			if _, queued := requiredBy[dep.Name]; !queued {
				wanted = append(wanted, dep.Name)
			}
			if !slices.Contains(requiredBy[dep.Name], parent) {
				requiredBy[dep.Name] = append(requiredBy[dep.Name], parent)
			}
		}
	}
	if len(wanted) == 0 {
		return nil, nil
	}

	found, err := r.fetchDependencies(ctx, wanted)
	if err != nil {
		return nil, err
	}

	var next []string
	for _, name := range wanted {
		cand, ok := found[name]
		if !ok {
			r.addNode(domain.DependencyNode{
				Name:       name,
				Status:     domain.DependencyMissing,
				RequiredBy: requiredBy[name],
				Depth:      depth,
			})
			r.report.Notes = append(r.report.Notes,
				fmt.Sprintf("dependency %s required by %s was not found", name, requiredBy[name][0]))
			continue
		}

		node := domain.DependencyNode{
			Name:       cand.Name,
			Version:    cand.Version,
			Status:     domain.DependencyToInstall,
			Source:     cand.Source,
			RequiredBy: requiredBy[name],
			Depth:      depth,
		}
		action := domain.ActionInstall
		from := ""
		if inst, ok := r.installed.Get(cand.Name); ok {
			from = inst.Version
			node.InstalledVersion = inst.Version
			node.Status = domain.DependencyToUpgrade
			action = domain.ActionUpdate
		}
		r.addNode(node)
		r.alias(name, cand.Name)
		if _, planned := r.planned[cand.Name]; planned {
			continue
		}
		r.report.Items = append(r.report.Items, domain.PlanItem{
			Action:      action,
			Name:        cand.Name,
			FromVersion: from,
			ToVersion:   cand.Version,
			Source:      cand.Source,
		})
		r.plan(cand)
		next = append(next, cand.Name)
	}
	return next, nil
}

// fetchDependencies looks up names in the repositories, falling back to the
// AUR for names the repositories do not know or provide.
func (r *resolution) fetchDependencies(ctx context.Context, names []string) (map[string]domain.Package, error) {
	found := make(map[string]domain.Package, len(names))

	pkgs, err := r.d.repo.Lookup(ctx, names)
	if err := r.tolerate(err); err != nil {
		return nil, err
	}
	var rest []string
	for _, name := range names {
		if p, ok := satisfier(pkgs, name); ok {
			found[name] = p
		} else {
			rest = append(rest, name)
		}
	}
	if len(rest) == 0 {
		return found, nil
	}

	pkgs, err = r.d.aur.Info(ctx, rest)
	if err != nil {
		// Missing AUR answers leave the dependency unresolved rather than failing the plan.
		r.report.Incomplete = true
		r.report.Notes = append(r.report.Notes, "third-party dependencies could not be resolved: "+err.Error())
		return found, nil
	}
	for _, name := range rest {
		if p, ok := satisfier(pkgs, name); ok {
			found[name] = p
		}
	}
	return found, nil
}

// tolerate keeps partial results of malformed metadata and returns every other error.
func (r *resolution) tolerate(err error) error {
	if err == nil {
		return nil
	}
	if domain.IsKind(err, domain.KindParseError) {
		r.report.Incomplete = true
		r.report.Notes = append(r.report.Notes, "some package metadata could not be read")
		return nil
	}
	return err
}

func (r *resolution) addNode(n domain.DependencyNode) {
	if _, seen := r.nodes[n.Name]; seen {
		return
	}
	r.nodes[n.Name] = len(r.report.Nodes)
	r.report.Nodes = append(r.report.Nodes, n)
}

// alias makes a dependency name resolve to the node of the package satisfying it.
func (r *resolution) alias(dep, name string) {
	if dep == name {
		return
	}
	if idx, ok := r.nodes[name]; ok {
		if _, seen := r.nodes[dep]; !seen {
			r.nodes[dep] = idx
		}
	}
}

func (r *resolution) plan(p domain.Package) {
	if _, ok := r.planned[p.Name]; ok {
		return
	}
	r.planned[p.Name] = p
	r.order = append(r.order, p.Name)
}

func (r *resolution) providedByPlan(name string) bool {
	for _, n := range r.order {
		p := r.planned[n]
		if p.Satisfies(name) {
			return true
		}
	}
	return false
}

// satisfier returns the package in pkgs that satisfies name, preferring an exact match.
func satisfier(pkgs []domain.Package, name string) (domain.Package, bool) {
	for _, p := range pkgs {
		if p.Name == name {
			return p, true
		}
	}
	for _, p := range pkgs {
		if p.Satisfies(name) {
			return p, true
		}
	}
	return domain.Package{}, false
}

// satisfiesInstalled checks a versioned dependency against an exact installed
// match. Virtual providers are accepted as they are.
func satisfiesInstalled(inst *domain.Package, dep domain.Dependency) bool {
	if dep.Operator == "" || dep.Version == "" || inst.Name != dep.Name {
		return true
	}
	c := domain.CompareVersions(inst.Version, dep.Version)
	switch dep.Operator {
	case ">=":
		return c >= 0
	case "<=":
		return c <= 0
	case ">":
		return c > 0
	case "<":
		return c < 0
	default:
		return c == 0 || domain.CompareVersions(stripRelease(inst.Version), dep.Version) == 0
	}
}

func stripRelease(v string) string {
	for i := len(v) - 1; i >= 0; i-- {
		if v[i] == '-' {
			return v[:i]
		}
	}
	return v
}

// conflicts merges the conflicts declared by installed packages with those
// declared by planned packages. Pairs are unordered; a local declaration wins.
func conflicts(installed *domain.Installed, order []string, planned map[string]domain.Package) []domain.ConflictRecord {
	type pair struct{ a, b string }
	key := func(x, y string) pair {
		if x > y {
			x, y = y, x
		}
		return pair{x, y}
	}

	index := make(map[pair]int)
	var out []domain.ConflictRecord
	add := func(rec domain.ConflictRecord) {
		k := key(rec.Package, rec.ConflictingWith)
		if i, ok := index[k]; ok {
			if rec.Origin == domain.OriginLocalQuery {
				out[i].Origin = domain.OriginLocalQuery
			}
			return
		}
		index[k] = len(out)
		out = append(out, rec)
	}

	for _, name := range order {
		p := planned[name]

		installed.Each(func(inst *domain.Package) {
			if inst.Name == p.Name || replaces(p, inst.Name) || planned[inst.Name].Name != "" {
				return
			}
			for _, expr := range inst.Conflicts {
				if p.Satisfies(domain.ParseDependency(expr).Name) {
					add(domain.ConflictRecord{Package: p.Name, ConflictingWith: inst.Name, Origin: domain.OriginLocalQuery})
				}
			}
			for _, expr := range p.Conflicts {
				if inst.Satisfies(domain.ParseDependency(expr).Name) {
					add(domain.ConflictRecord{Package: p.Name, ConflictingWith: inst.Name, Origin: domain.OriginSourceMetadata})
				}
			}
		})

		for _, other := range order {
			if other == name {
				continue
			}
			o := planned[other]
			for _, expr := range p.Conflicts {
				if o.Satisfies(domain.ParseDependency(expr).Name) {
					add(domain.ConflictRecord{Package: p.Name, ConflictingWith: o.Name, Origin: domain.OriginSourceMetadata})
				}
			}
		}
	}
	return out
}

func replaces(p domain.Package, name string) bool {
	for _, expr := range p.Replaces {
		if domain.ParseDependency(expr).Name == name {
			return true
		}
	}
	return false
}

// reverse collects installed packages that depend on the removal targets,
// following dependents breadth-first.
func (d *Dependencies) reverse(installed *domain.Installed, targets []domain.Target, report *domain.DependencyReport) {
	removing := make(map[string]bool, len(targets))
	var frontier []*domain.Package
	for _, t := range targets {
		p, ok := installed.Get(t.Name)
		if !ok {
			report.Notes = append(report.Notes, fmt.Sprintf("target %s is not installed", t.Name))
			continue
		}
		removing[p.Name] = true
		frontier = append(frontier, p)
		report.Items = append(report.Items, domain.PlanItem{
			Action:      domain.ActionRemove,
			Name:        p.Name,
			FromVersion: p.Version,
			Source:      p.Source,
		})
	}

	for depth := 1; len(frontier) > 0; depth++ {
		var next []*domain.Package
		installed.Each(func(q *domain.Package) {
			if removing[q.Name] {
				return
			}
			var via []string
			for _, expr := range q.Depends {
				name := domain.ParseDependency(expr).Name
				for _, f := range frontier {
					if f.Satisfies(name) && !slices.Contains(via, f.Name) {
						via = append(via, f.Name)
					}
				}
			}
			if len(via) == 0 {
				return
			}
			removing[q.Name] = true
			next = append(next, q)
			report.Nodes = append(report.Nodes, domain.DependencyNode{
				Name:             q.Name,
				InstalledVersion: q.Version,
				Status:           domain.DependencyAffected,
				Source:           q.Source,
				RequiredBy:       via,
				Depth:            depth,
				ReverseDependent: true,
				Direct:           depth == 1,
			})
		})
		frontier = next
	}
}
