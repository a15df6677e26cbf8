package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.trai.ch/pkgdeck/internal/app"
	"go.trai.ch/pkgdeck/internal/core/domain"
)

var actionShort = map[domain.Action]string{
	domain.ActionInstall: "Install packages after reviewing the plan",
	domain.ActionUpdate:  "Upgrade packages, or the whole system when none are given",
	domain.ActionRemove:  "Remove packages after reviewing the plan",
}

func (c *CLI) newActionCmd(action domain.Action) *cobra.Command {
	cmd := &cobra.Command{
		Use:   fmt.Sprintf("%s [packages...]", action),
		Short: actionShort[action],
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && action != domain.ActionUpdate {
				// Display command usage help without returning an error
				_ = cmd.Help()
				return nil
			}
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			force, _ := cmd.Flags().GetBool("force")
			yes, _ := cmd.Flags().GetBool("yes")

			return c.app.Execute(cmd.Context(), action, args, app.ExecuteOptions{
				DryRun: dryRun,
				Force:  force,
				Yes:    yes,
			})
		},
	}
	if action == domain.ActionUpdate {
		cmd.Aliases = []string{"upgrade"}
	}
	cmd.Flags().BoolP("dry-run", "n", false, "Print the commands instead of running them")
	cmd.Flags().BoolP("force", "f", false, "Run even when the plan has blocking conflicts")
	cmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
	return cmd
}
