// Package main is the entry point for the taskvoice CLI.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Jayphen/taskvoice/internal/config"
	"github.com/Jayphen/taskvoice/internal/logging"
	"github.com/Jayphen/taskvoice/internal/tasksource"
)

// Version is set at build time.
var Version = "dev"

func main() {
	// Initialize logging from config
	initLogging()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// rootFlags are shared by every subcommand.
type rootFlags struct {
	sources []string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "taskvoice",
		Short: "Voice-driven task manager",
		Long: `Taskvoice turns spoken utterances into changes to your task lists.

It serves a voice webhook, and exposes the interpretation engine on the
command line so utterances can be tried out against real task sources.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringArrayVar(&flags.sources, "source", nil,
		`Task source spec, repeatable (e.g. "todolist:path=~/tasks.md"); overrides config`)

	rootCmd.AddCommand(
		newParseCmd(),
		newQueryCmd(),
		newCleanCmd(),
		newResolveCmd(flags),
		newStatusCmd(),
		newTasksCmd(flags),
		newServeCmd(flags),
		newConsoleCmd(flags),
		newRemindCmd(flags),
		newTokenCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)

	return rootCmd
}

// initLogging initializes the logger from config.
func initLogging() {
	cfg, err := config.Get()
	if err != nil {
		// If config fails, use defaults (console output)
		_ = logging.Init(nil)
		return
	}

	if err := logging.InitFromLogConfig(cfg.LogConfig()); err != nil {
		// Fall back to defaults on error
		_ = logging.Init(nil)
	}
}

// openSources opens the sources named by --source, or the configured ones.
func openSources(ctx context.Context, flags *rootFlags) (*tasksource.MultiSource, error) {
	specs := flags.sources
	if len(specs) == 0 {
		cfg, err := config.Get()
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		specs = cfg.Sources
	}
	src, err := tasksource.CreateMultiSourceFromStrings(ctx, specs)
	if err != nil {
		return nil, fmt.Errorf("failed to open task sources: %w", err)
	}
	return src, nil
}
