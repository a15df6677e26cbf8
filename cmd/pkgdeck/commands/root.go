// Package commands implements the CLI commands for pkgdeck.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/pkgdeck/internal/app"
	"go.trai.ch/pkgdeck/internal/build"
	"go.trai.ch/pkgdeck/internal/core/domain"
)

// CLI represents the command line interface for pkgdeck.
type CLI struct {
	app     Application
	logs    LogSettings
	rootCmd *cobra.Command
}

// Application represents the application logic interface.
type Application interface {
	Preflight(ctx context.Context, action domain.Action, targets []string, opts app.PlanOptions) error
	Execute(ctx context.Context, action domain.Action, targets []string, opts app.ExecuteOptions) error
	Run(ctx context.Context, argv []string, opts app.RunOptions) error
	Info(ctx context.Context, targets []string) error
	Interactive(ctx context.Context, action domain.Action, targets []string) error
	CleanCache(ctx context.Context) error
}

// LogSettings is implemented by loggers whose output can be tuned from flags.
type LogSettings interface {
	SetVerbose(enable bool)
	SetJSON(enable bool)
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:           "pkgdeck",
		Short:         "Preflight and run package operations with a risk report",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	rootCmd.PersistentFlags().Bool("verbose", false, "Enable debug logging")
	rootCmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		if c.logs == nil {
			return
		}
		verbose, _ := cmd.Flags().GetBool("verbose")
		jsonLogs, _ := cmd.Flags().GetBool("log-json")
		c.logs.SetVerbose(verbose)
		c.logs.SetJSON(jsonLogs)
	}

	rootCmd.AddCommand(c.newPlanCmd())
	for _, action := range []domain.Action{domain.ActionInstall, domain.ActionUpdate, domain.ActionRemove} {
		rootCmd.AddCommand(c.newActionCmd(action))
	}
	rootCmd.AddCommand(c.newTUICmd())
	rootCmd.AddCommand(c.newRunCmd())
	rootCmd.AddCommand(c.newInfoCmd())
	rootCmd.AddCommand(c.newCacheCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// WithLogSettings lets the global logging flags reconfigure l.
func (c *CLI) WithLogSettings(l LogSettings) *CLI {
	c.logs = l
	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}
