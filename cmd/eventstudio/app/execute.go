package app

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/eventstudio/pkg/eventstudio/config"
)

// Execute runs the eventstudio CLI with the given arguments.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "eventstudio",
		Short:   "In-process event stations",
		Version: a.version,
		Long: `eventstudio drives an in-process publish/subscribe studio.

Events are broadcast on named stations to listeners ordered by priority.
Events nobody listens to wait in a bounded replay queue until a listener
for their type arrives.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default is ./.eventstudio.yaml)")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.Int("max-queue-size", 0, "replay queue capacity per event type, 0 for unbounded")
	flags.String("audit-driver", "", "audit store: none, memory, sqlite")
	flags.String("audit-path", "", "sqlite audit database path")

	// Flags override env and config file values only when set.
	_ = a.v.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level"))
	_ = a.v.BindPFlag(config.KeyMaxQueueSize, flags.Lookup("max-queue-size"))
	_ = a.v.BindPFlag(config.KeyAuditDriver, flags.Lookup("audit-driver"))
	_ = a.v.BindPFlag(config.KeyAuditPath, flags.Lookup("audit-path"))

	rootCmd.SetVersionTemplate("eventstudio {{.Version}}\n")

	a.registerCommands(rootCmd)
	return rootCmd
}

// setupCommand is called before any command runs.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	if err := a.loadSettings(cmd.ErrOrStderr()); err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	return nil
}

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(a.NewShakedownCommand())
	rootCmd.AddCommand(a.NewAuditCommand())
	rootCmd.AddCommand(a.NewConfigCommand())
	rootCmd.AddCommand(a.NewVersionCommand())
}
