package domain

import "strings"

// Package is the metadata pkgdeck knows about one package from one source.
type Package struct {
	Name         string   `json:"name"`
	Version      string   `json:"version"`
	Description  string   `json:"description,omitempty"`
	URL          string   `json:"url,omitempty"`
	Source       Source   `json:"source"`
	Repository   string   `json:"repository,omitempty"`
	Maintainer   string   `json:"maintainer,omitempty"`
	Licenses     []string `json:"licenses,omitempty"`
	Votes        int      `json:"votes,omitempty"`
	Depends      []string `json:"depends,omitempty"`
	MakeDepends  []string `json:"make_depends,omitempty"`
	CheckDepends []string `json:"check_depends,omitempty"`
	OptDepends   []string `json:"opt_depends,omitempty"`
	Conflicts    []string `json:"conflicts,omitempty"`
	Provides     []string `json:"provides,omitempty"`
	Replaces     []string `json:"replaces,omitempty"`
	Backup       []string `json:"backup,omitempty"`
}

// Satisfies reports whether p satisfies a dependency on name, directly or through provides.
func (p *Package) Satisfies(name string) bool {
	if p.Name == name {
		return true
	}
	for _, prov := range p.Provides {
		if ParseDependency(prov).Name == name {
			return true
		}
	}
	return false
}

// Dependency is a parsed dependency expression such as "glibc>=2.38".
type Dependency struct {
	Name       string
	Operator   string
	Version    string
	Annotation string
}

// dependencyOperators are checked longest first.
var dependencyOperators = []string{">=", "<=", "==", "=", ">", "<"}

// ParseDependency splits an expression into name, operator and version.
// Optional dependency annotations ("name: reason") are split off.
func ParseDependency(expr string) Dependency {
	var dep Dependency
	expr = strings.TrimSpace(expr)
	if name, note, ok := strings.Cut(expr, ":"); ok {
		expr = strings.TrimSpace(name)
		dep.Annotation = strings.TrimSpace(note)
	}
	for _, op := range dependencyOperators {
		if i := strings.Index(expr, op); i > 0 {
			dep.Name = strings.TrimSpace(expr[:i])
			dep.Operator = op
			dep.Version = strings.TrimSpace(expr[i+len(op):])
			return dep
		}
	}
	dep.Name = expr
	return dep
}

// Installed is an index over the locally installed package set.
type Installed struct {
	byName map[string]*Package
	order  []string
}

// NewInstalled indexes pkgs by name.
func NewInstalled(pkgs []Package) *Installed {
	idx := &Installed{byName: make(map[string]*Package, len(pkgs))}
	for i := range pkgs {
		p := &pkgs[i]
		if _, dup := idx.byName[p.Name]; !dup {
			idx.order = append(idx.order, p.Name)
		}
		idx.byName[p.Name] = p
	}
	return idx
}

// Get returns the installed package with the exact name.
func (i *Installed) Get(name string) (*Package, bool) {
	p, ok := i.byName[name]
	return p, ok
}

// Provider returns an installed package that satisfies name, preferring an exact match.
func (i *Installed) Provider(name string) (*Package, bool) {
	if p, ok := i.byName[name]; ok {
		return p, true
	}
	for _, n := range i.order {
		if p := i.byName[n]; p.Satisfies(name) {
			return p, true
		}
	}
	return nil, false
}

// Each calls fn for every installed package in insertion order.
func (i *Installed) Each(fn func(*Package)) {
	for _, n := range i.order {
		fn(i.byName[n])
	}
}

// Len returns the number of installed packages.
func (i *Installed) Len() int {
	return len(i.order)
}
