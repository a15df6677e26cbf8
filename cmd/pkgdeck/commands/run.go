package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/pkgdeck/internal/app"
)

func (c *CLI) newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [flags] [--] <command> [args...]",
		Short: "Run a command in a pseudo-terminal with credential prompts handled",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			elevate, _ := cmd.Flags().GetBool("elevate")
			noAbort, _ := cmd.Flags().GetBool("no-abort")

			return c.app.Run(cmd.Context(), args, app.RunOptions{
				DryRun:  dryRun,
				Elevate: elevate,
				NoAbort: noAbort,
			})
		},
	}
	// Flags after the command name belong to the command.
	cmd.Flags().SetInterspersed(false)
	cmd.Flags().BoolP("dry-run", "n", false, "Print the command instead of running it")
	cmd.Flags().BoolP("elevate", "e", false, "Run the command through the configured elevation tool")
	cmd.Flags().Bool("no-abort", false, "Ignore interrupts until the command exits")
	return cmd
}
