package tui

import (
	"fmt"
	"strings"

	"go.trai.ch/pkgdeck/internal/core/domain"
	"go.trai.ch/pkgdeck/internal/ui/style"
)

// Section names in display order.
const (
	SectionSummary      = "Summary"
	SectionPackages     = "Packages"
	SectionDependencies = "Dependencies"
	SectionConflicts    = "Conflicts"
	SectionServices     = "Services"
	SectionFiles        = "Files"
	SectionBuild        = "Build"
	SectionDetails      = "Details"
	SectionSession      = "Session"
)

var sectionOrder = []string{
	SectionSummary,
	SectionPackages,
	SectionDependencies,
	SectionConflicts,
	SectionServices,
	SectionFiles,
	SectionBuild,
	SectionDetails,
	SectionSession,
}

// planSection maps list sections onto the plan section whose worker fills them.
var planSection = map[string]domain.Section{
	SectionPackages:     domain.SectionDependencies,
	SectionDependencies: domain.SectionDependencies,
	SectionConflicts:    domain.SectionDependencies,
	SectionServices:     domain.SectionServices,
	SectionFiles:        domain.SectionFiles,
	SectionBuild:        domain.SectionSandbox,
}

// sectionContent is the rendered body of one section.
type sectionContent struct {
	lines  []string
	count  int
	status SectionStatus
}

func planContents(plan *domain.Plan) map[string]sectionContent {
	out := map[string]sectionContent{
		SectionSummary:      summaryContent(plan),
		SectionPackages:     packagesContent(plan),
		SectionDependencies: dependenciesContent(plan),
		SectionConflicts:    conflictsContent(plan),
		SectionServices:     servicesContent(plan),
		SectionFiles:        filesContent(plan),
		SectionBuild:        buildContent(plan),
	}
	for name, sec := range planSection {
		if reason, ok := plan.Unavailable[sec]; ok {
			out[name] = sectionContent{
				lines:  []string{"unavailable: " + reason},
				status: StatusUnavailable,
			}
		}
	}
	return out
}

func counted(lines []string, n int, warn bool) sectionContent {
	status := StatusReady
	switch {
	case n == 0:
		status = StatusEmpty
	case warn:
		status = StatusWarning
	}
	return sectionContent{lines: lines, count: n, status: status}
}

func summaryContent(plan *domain.Plan) sectionContent {
	names := make([]string, len(plan.Targets))
	for i, t := range plan.Targets {
		names[i] = t.Name
		if t.Source == domain.SourceThirdParty {
			names[i] = domain.ThirdPartyPrefix + t.Name
		}
	}
	target := strings.Join(names, " ")
	if target == "" {
		target = "(all packages)"
	}

	lines := []string{
		fmt.Sprintf("%s %s", plan.Action, target),
		"signature " + string(plan.Signature),
		"",
		fmt.Sprintf("risk %s (score %d)", plan.Risk.Level, plan.Risk.Score),
	}
	for _, r := range plan.Risk.Reasons {
		lines = append(lines, fmt.Sprintf("  +%d %s", r.Weight, r.Detail))
	}
	for _, note := range plan.Notes {
		lines = append(lines, style.Warning+" "+note)
	}
	if plan.Incomplete {
		lines = append(lines, style.Warning+" some metadata could not be parsed; the plan is incomplete")
	}

	status := StatusReady
	if plan.Risk.Level != domain.RiskLow || plan.Incomplete {
		status = StatusWarning
	}
	if plan.Blocking {
		lines = append(lines, style.Cross+" plan has conflicts; press X to proceed anyway")
		status = StatusError
	}
	return sectionContent{lines: lines, status: status}
}

func packagesContent(plan *domain.Plan) sectionContent {
	lines := make([]string, 0, len(plan.Items))
	for _, it := range plan.Items {
		version := it.ToVersion
		switch {
		case it.FromVersion != "" && it.ToVersion != "" && it.FromVersion != it.ToVersion:
			version = it.FromVersion + " " + style.Arrow + " " + it.ToVersion
		case version == "":
			version = it.FromVersion
		}
		lines = append(lines, fmt.Sprintf("%s %-8s %s %s [%s]", style.Dot, it.Action, it.Name, version, it.Source))
	}
	return counted(lines, len(plan.Items), false)
}

func dependenciesContent(plan *domain.Plan) sectionContent {
	var lines []string
	reverse := 0
	for _, n := range plan.Dependencies {
		switch {
		case n.ReverseDependent:
			reverse++
			kind := "transitive"
			if n.Direct {
				kind = "direct"
			}
			lines = append(lines, fmt.Sprintf("%s %s %s (%s dependent, via %s)",
				style.Warning, n.Name, n.InstalledVersion, kind, strings.Join(n.RequiredBy, ", ")))
		case n.Depth > 0:
			lines = append(lines, fmt.Sprintf("%s %s %s (%s, required by %s)",
				style.Circle, n.Name, n.Version, n.Status, strings.Join(n.RequiredBy, ", ")))
		}
	}
	return counted(lines, len(lines), reverse > 0)
}

func conflictsContent(plan *domain.Plan) sectionContent {
	lines := make([]string, 0, len(plan.Conflicts))
	for _, c := range plan.Conflicts {
		lines = append(lines, fmt.Sprintf("%s %s conflicts with %s (%s)", style.Cross, c.Package, c.ConflictingWith, c.Origin))
	}
	content := counted(lines, len(lines), false)
	if plan.Blocking {
		content.status = StatusError
	}
	return content
}

func servicesContent(plan *domain.Plan) sectionContent {
	lines := make([]string, 0, len(plan.Services))
	restarts := false
	for _, s := range plan.Services {
		state := "inactive"
		if s.Active {
			state = "active"
		}
		if s.RestartRequired {
			state += ", restart required"
			restarts = true
		}
		lines = append(lines, fmt.Sprintf("%s %s (%s) from %s", style.Dot, s.Unit, state, strings.Join(s.Providers, ", ")))
	}
	return counted(lines, len(lines), restarts)
}

func filesContent(plan *domain.Plan) sectionContent {
	counts := map[domain.FileChangeKind]int{}
	var lines []string
	conflicts := false
	for _, f := range plan.Files {
		counts[f.Kind]++
		if f.ConfigConflict {
			conflicts = true
			lines = append(lines, fmt.Sprintf("%s %s %s %s", style.Warning, f.Path, style.Arrow, f.PredictedSave))
		}
	}
	lines = append([]string{fmt.Sprintf("%d new, %d changed, %d removed",
		counts[domain.FileNew], counts[domain.FileChanged], counts[domain.FileRemoved])}, lines...)
	for _, f := range plan.Files {
		if !f.ConfigConflict {
			lines = append(lines, fmt.Sprintf("  %s %s", f.Kind, f.Path))
		}
	}
	return counted(lines, len(plan.Files), conflicts)
}

func buildContent(plan *domain.Plan) sectionContent {
	var lines []string
	missing := false
	for _, s := range plan.Sandbox {
		lines = append(lines, fmt.Sprintf("%s %s: %d build dependencies, %d missing",
			style.Lock, s.Package, len(s.Dependencies), s.Missing()))
		for _, d := range s.Dependencies {
			mark := style.Check
			if !d.Installed {
				mark = style.Circle
				missing = true
			}
			lines = append(lines, fmt.Sprintf("  %s %s (%s)", mark, d.Name, d.Kind))
		}
	}
	return counted(lines, len(plan.Sandbox), missing)
}

func detailsContent(msg MsgDetails) sectionContent {
	if msg.Err != nil {
		return sectionContent{lines: []string{style.Cross + " " + msg.Err.Error()}, status: StatusError}
	}
	var lines []string
	for i := range msg.Packages {
		p := &msg.Packages[i]
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, fmt.Sprintf("%s %s [%s]", p.Name, p.Version, p.Source))
		if p.Description != "" {
			lines = append(lines, "  "+p.Description)
		}
		if p.URL != "" {
			lines = append(lines, "  "+p.URL)
		}
		if len(p.Depends) > 0 {
			lines = append(lines, "  depends on "+strings.Join(p.Depends, ", "))
		}
	}
	for _, name := range msg.Missing {
		lines = append(lines, style.Cross+" "+name+" not found")
	}
	return counted(lines, len(msg.Packages), len(msg.Missing) > 0)
}
