package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Jayphen/taskvoice/internal/notify"
	"github.com/Jayphen/taskvoice/internal/tasksource"
)

func newRemindCmd(root *rootFlags) *cobra.Command {
	flags := &engineFlags{}
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Send desktop reminders for overdue tasks and tasks due today",
		Long: `Send one desktop notification listing overdue tasks and one listing
open tasks due later today. Suitable for running from cron.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			now, err := flags.clock()
			if err != nil {
				return err
			}
			src, err := openSources(cmd.Context(), root)
			if err != nil {
				return err
			}
			defer src.Close()

			tasks, err := src.ListTasks(cmd.Context(), nil)
			if err != nil {
				return fmt.Errorf("failed to list tasks: %w", err)
			}

			out := cmd.OutOrStdout()
			var n notify.Notifier = notify.Desktop{}
			if dryRun {
				n = notify.Func(func(_ context.Context, title, message string) error {
					fmt.Fprintf(out, "%s: %s\n", title, message)
					return nil
				})
			}

			sent, err := notify.DueReminders(cmd.Context(), n, tasksource.Candidates(tasks), now)
			if err != nil {
				return err
			}
			if sent == 0 {
				fmt.Fprintln(out, "Nothing due")
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print reminders instead of notifying")

	return cmd
}
