package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/pkgdeck/internal/app"
	"go.trai.ch/pkgdeck/internal/core/domain"
	"go.trai.ch/zerr"
)

func (c *CLI) newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan <install|update|remove> [packages...]",
		Short: "Show what an operation would change without running it",
		Long: "Resolve dependencies, conflicts, file changes, affected services and build " +
			"requirements for an operation and print the resulting risk report.\n\n" +
			"Prefix a package with aur/ to resolve it from the AUR.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			action, ok := domain.ParseAction(args[0])
			if !ok {
				return zerr.With(domain.ErrUnknownAction, "action", args[0])
			}
			asJSON, _ := cmd.Flags().GetBool("json")
			return c.app.Preflight(cmd.Context(), action, args[1:], app.PlanOptions{JSON: asJSON})
		},
	}
	cmd.Flags().Bool("json", false, "Print the plan as JSON")
	return cmd
}
