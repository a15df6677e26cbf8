// Package linear renders plans and session output as plain chronological lines.
package linear

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"go.trai.ch/pkgdeck/internal/core/domain"
	"go.trai.ch/pkgdeck/internal/ui/output"
	"go.trai.ch/pkgdeck/internal/ui/style"
)

// Renderer writes plans and session logs to stdout and status lines to stderr.
type Renderer struct {
	stdout io.Writer
	stderr io.Writer
	output *termenv.Output
	tty    bool

	mu sync.Mutex
	// replacing is set while the last stdout line can still be redrawn.
	replacing bool
}

// NewRenderer creates a Renderer. Nil writers mean stdout and stderr.
func NewRenderer(stdout, stderr io.Writer) *Renderer {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return &Renderer{
		stdout: stdout,
		stderr: stderr,
		output: output.New(stderr),
		tty:    output.IsTerminal(stdout),
	}
}

func (r *Renderer) heading(s string) string {
	if output.ColorProfile() == termenv.Ascii {
		return s
	}
	return lipgloss.NewStyle().Bold(true).Foreground(style.Accent).Render(s)
}

func (r *Renderer) colored(s string, c lipgloss.Color) string {
	if output.ColorProfile() == termenv.Ascii {
		return s
	}
	return lipgloss.NewStyle().Foreground(c).Render(s)
}

// RenderPlan prints every section of the plan.
func (r *Renderer) RenderPlan(plan *domain.Plan) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var b strings.Builder
	names := make([]string, len(plan.Targets))
	for i, t := range plan.Targets {
		names[i] = t.Name
		if t.Source == domain.SourceThirdParty {
			names[i] = domain.ThirdPartyPrefix + t.Name
		}
	}
	fmt.Fprintf(&b, "%s %s %s\n", r.heading("Plan"), plan.Action, strings.Join(names, " "))
	fmt.Fprintf(&b, "  signature %s\n", plan.Signature)

	r.section(&b, "Packages", domain.SectionDependencies, plan, len(plan.Items), func() {
		for _, it := range plan.Items {
			version := it.ToVersion
			if it.FromVersion != "" && it.ToVersion != "" && it.FromVersion != it.ToVersion {
				version = it.FromVersion + " " + style.Arrow + " " + it.ToVersion
			} else if version == "" {
				version = it.FromVersion
			}
			fmt.Fprintf(&b, "  %s %-8s %s %s [%s]\n", style.Dot, it.Action, it.Name, version, it.Source)
		}
	})

	var closure, reverse []domain.DependencyNode
	for _, n := range plan.Dependencies {
		if n.ReverseDependent {
			reverse = append(reverse, n)
			continue
		}
		if n.Depth > 0 {
			closure = append(closure, n)
		}
	}
	r.section(&b, "Dependencies", domain.SectionDependencies, plan, len(closure), func() {
		for _, n := range closure {
			fmt.Fprintf(&b, "  %s %s %s (%s, required by %s)\n",
				style.Circle, n.Name, n.Version, n.Status, strings.Join(n.RequiredBy, ", "))
		}
	})
	if len(reverse) > 0 {
		fmt.Fprintf(&b, "\n%s\n", r.heading("Dependents"))
		for _, n := range reverse {
			kind := "transitive"
			if n.Direct {
				kind = "direct"
			}
			fmt.Fprintf(&b, "  %s %s %s (%s, via %s)\n",
				style.Warning, n.Name, n.InstalledVersion, kind, strings.Join(n.RequiredBy, ", "))
		}
	}

	if len(plan.Conflicts) > 0 {
		fmt.Fprintf(&b, "\n%s\n", r.heading("Conflicts"))
		for _, c := range plan.Conflicts {
			fmt.Fprintf(&b, "  %s %s conflicts with %s (%s)\n",
				r.colored(style.Cross, style.Red), c.Package, c.ConflictingWith, c.Origin)
		}
	}

	r.section(&b, "Services", domain.SectionServices, plan, len(plan.Services), func() {
		for _, s := range plan.Services {
			state := "inactive"
			if s.Active {
				state = "active"
			}
			if s.RestartRequired {
				state += ", restart required"
			}
			fmt.Fprintf(&b, "  %s %s (%s) from %s\n", style.Dot, s.Unit, state, strings.Join(s.Providers, ", "))
		}
	})

	r.section(&b, "Files", domain.SectionFiles, plan, len(plan.Files), func() {
		counts := map[domain.FileChangeKind]int{}
		for _, f := range plan.Files {
			counts[f.Kind]++
			if f.ConfigConflict {
				fmt.Fprintf(&b, "  %s %s %s %s\n", style.Warning, f.Path, style.Arrow, f.PredictedSave)
			}
		}
		fmt.Fprintf(&b, "  %d new, %d changed, %d removed\n",
			counts[domain.FileNew], counts[domain.FileChanged], counts[domain.FileRemoved])
	})

	r.section(&b, "Build", domain.SectionSandbox, plan, len(plan.Sandbox), func() {
		for _, s := range plan.Sandbox {
			fmt.Fprintf(&b, "  %s %s: %d build dependencies, %d missing\n",
				style.Lock, s.Package, len(s.Dependencies), s.Missing())
		}
	})

	fmt.Fprintf(&b, "\n%s %s (score %d)\n", r.heading("Risk"), r.riskLabel(plan.Risk.Level), plan.Risk.Score)
	for _, reason := range plan.Risk.Reasons {
		fmt.Fprintf(&b, "  +%d %s\n", reason.Weight, reason.Detail)
	}

	for _, note := range plan.Notes {
		fmt.Fprintf(&b, "%s %s\n", r.colored(style.Warning, style.Yellow), note)
	}
	if plan.Blocking {
		fmt.Fprintf(&b, "%s plan has conflicts; use --force to proceed\n", r.colored(style.Cross, style.Red))
	}
	if plan.Incomplete {
		fmt.Fprintf(&b, "%s some metadata could not be parsed; the plan is incomplete\n", r.colored(style.Warning, style.Yellow))
	}

	_, _ = io.WriteString(r.stdout, b.String())
}

func (r *Renderer) section(b *strings.Builder, title string, sec domain.Section, plan *domain.Plan, n int, body func()) {
	if reason, ok := plan.Unavailable[sec]; ok {
		if sec != domain.SectionDependencies || title == "Packages" {
			fmt.Fprintf(b, "\n%s\n  unavailable: %s\n", r.heading(title), reason)
		}
		return
	}
	if n == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s\n", r.heading(title))
	body()
}

func (r *Renderer) riskLabel(level domain.RiskLevel) string {
	switch level {
	case domain.RiskHigh:
		return r.colored(level.String(), style.Red)
	case domain.RiskMedium:
		return r.colored(level.String(), style.Yellow)
	default:
		return r.colored(level.String(), style.Green)
	}
}

// RenderDetails prints package metadata, one block per package.
func (r *Renderer) RenderDetails(pkgs []domain.Package, missing []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var b strings.Builder
	for i, p := range pkgs {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s %s [%s]\n", r.heading(p.Name), p.Version, p.Source)
		if p.Description != "" {
			fmt.Fprintf(&b, "  %s\n", p.Description)
		}
		if p.URL != "" {
			fmt.Fprintf(&b, "  url         %s\n", p.URL)
		}
		if len(p.Licenses) > 0 {
			fmt.Fprintf(&b, "  licenses    %s\n", strings.Join(p.Licenses, ", "))
		}
		if p.Repository != "" {
			fmt.Fprintf(&b, "  repository  %s\n", p.Repository)
		}
		if p.Maintainer != "" {
			fmt.Fprintf(&b, "  maintainer  %s\n", p.Maintainer)
		}
		if p.Source == domain.SourceThirdParty {
			fmt.Fprintf(&b, "  votes       %d\n", p.Votes)
		}
	}
	for _, name := range missing {
		fmt.Fprintf(&b, "%s %s not found\n", r.colored(style.Cross, style.Red), name)
	}
	_, _ = io.WriteString(r.stdout, b.String())
}

// RenderPlanJSON prints the plan as indented JSON.
func (r *Renderer) RenderPlanJSON(plan *domain.Plan) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	enc := json.NewEncoder(r.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(plan)
}

// SessionStarted prints the command being run.
func (r *Renderer) SessionStarted(rec domain.SessionRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prefix := r.output.String(style.Arrow).Foreground(termenv.ANSICyan).String()
	_, _ = fmt.Fprintf(r.stderr, "%s %s\n", prefix, strings.Join(rec.Argv, " "))
}

// SessionOutput prints one framed line. On a terminal a replace redraws the
// previous line; elsewhere every line is printed.
func (r *Renderer) SessionOutput(line string, replace bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.tty {
		_, _ = fmt.Fprintln(r.stdout, line)
		return
	}
	if replace && r.replacing {
		_, _ = io.WriteString(r.stdout, "\r"+ansi.EraseEntireLine+line)
		return
	}
	if r.replacing {
		_, _ = io.WriteString(r.stdout, "\n")
	}
	_, _ = io.WriteString(r.stdout, line)
	r.replacing = true
}

// SessionFinished prints the terminal state of a session.
func (r *Renderer) SessionFinished(rec domain.SessionRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.replacing {
		_, _ = io.WriteString(r.stdout, "\n")
		r.replacing = false
	}

	elapsed := rec.FinishedAt.Sub(rec.StartedAt).Round(time.Millisecond)
	switch rec.State {
	case domain.SessionCompleted:
		symbol := r.output.String(style.Check).Foreground(termenv.ANSIGreen).String()
		_, _ = fmt.Fprintf(r.stderr, "%s Completed in %v\n", symbol, elapsed)
	case domain.SessionAborted:
		symbol := r.output.String(style.Warning).Foreground(termenv.ANSIYellow).String()
		_, _ = fmt.Fprintf(r.stderr, "%s Aborted after %v\n", symbol, elapsed)
	default:
		symbol := r.output.String(style.Cross).Foreground(termenv.ANSIRed).String()
		status := "unknown"
		if rec.ExitStatus != nil {
			status = fmt.Sprint(*rec.ExitStatus)
		}
		_, _ = fmt.Fprintf(r.stderr, "%s Failed after %v (exit status %s)\n", symbol, elapsed, status)
	}
}

// Status prints a short message to stderr.
func (r *Renderer) Status(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, _ = fmt.Fprintln(r.stderr, r.output.String(msg).Faint().String())
}
