package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/pkgdeck/internal/core/domain"
	"go.trai.ch/zerr"
)

func (c *CLI) newTUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui <install|update|remove> [packages...]",
		Short: "Review a plan interactively and run it",
		Long: "Open a full screen view of the plan for an operation. Sections fill in as they " +
			"resolve, the plan is resolved again when the package database changes, and " +
			"the operation runs in place with its output and password prompts.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			action, ok := domain.ParseAction(args[0])
			if !ok {
				return zerr.With(domain.ErrUnknownAction, "action", args[0])
			}
			return c.app.Interactive(cmd.Context(), action, args[1:])
		},
	}
}
