package pacman

import (
	"os/exec"
	"slices"

	"go.trai.ch/pkgdeck/internal/core/domain"
)

// Helpers are the AUR helpers tried in order for third-party targets.
var Helpers = []string{"paru", "yay"}

// CommandBuilder turns an action and its targets into the commands that carry it out.
type CommandBuilder struct {
	lookPath func(string) (string, error)
}

// NewCommandBuilder creates a builder that looks up AUR helpers on PATH.
func NewCommandBuilder() *CommandBuilder {
	return &CommandBuilder{lookPath: exec.LookPath}
}

// Build returns one command for official targets and one for third-party targets,
// omitting either when it has no targets. Update without targets is a full upgrade.
func (b *CommandBuilder) Build(action domain.Action, targets []domain.Target, dryRun bool) []domain.Command {
	var official, thirdParty []string
	for _, t := range targets {
		if t.Source == domain.SourceThirdParty {
			thirdParty = append(thirdParty, t.Name)
			continue
		}
		official = append(official, t.Name)
	}

	var cmds []domain.Command
	switch action {
	case domain.ActionInstall:
		if len(official) > 0 {
			cmds = append(cmds, domain.Command{
				Argv:           concat([]string{Binary, "-S", "--needed", "--noconfirm"}, official),
				NeedsElevation: true,
				Abortable:      true,
			})
		}
	case domain.ActionUpdate:
		if len(targets) == 0 {
			cmds = append(cmds, domain.Command{
				Argv:           []string{Binary, "-Syu", "--noconfirm"},
				NeedsElevation: true,
				Abortable:      true,
			})
		}
		if len(official) > 0 {
			cmds = append(cmds, domain.Command{
				Argv:           concat([]string{Binary, "-S", "--noconfirm"}, official),
				NeedsElevation: true,
				Abortable:      true,
			})
		}
	case domain.ActionRemove:
		names := concat(official, thirdParty)
		if len(names) > 0 {
			cmds = append(cmds, domain.Command{
				Argv:           concat([]string{Binary, "-Rns", "--noconfirm"}, names),
				NeedsElevation: true,
			})
		}
		thirdParty = nil
	}

	if len(thirdParty) > 0 {
		// Helpers elevate on their own; their sudo prompt is answered through the terminal.
		cmds = append(cmds, domain.Command{
			Argv:      concat([]string{b.helper(), "-S", "--needed", "--noconfirm"}, thirdParty),
			Abortable: true,
		})
	}

	for i := range cmds {
		cmds[i].DryRun = dryRun
	}
	return cmds
}

func (b *CommandBuilder) helper() string {
	for _, h := range Helpers {
		if _, err := b.lookPath(h); err == nil {
			return h
		}
	}
	return Helpers[0]
}

func concat(a, b []string) []string {
	return append(slices.Clone(a), b...)
}
