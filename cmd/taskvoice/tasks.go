package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Jayphen/taskvoice/internal/interpret"
	"github.com/Jayphen/taskvoice/internal/tasksource"
)

func newTasksCmd(root *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List and add tasks in the configured sources",
	}

	cmd.AddCommand(newTasksListCmd(root))
	cmd.AddCommand(newTasksAddCmd(root))

	return cmd
}

func newTasksListCmd(root *rootFlags) *cobra.Command {
	flags := &engineFlags{}
	var query string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Long: `List tasks from every source. --query narrows the list with a spoken
read request, e.g. --query "what's overdue".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := openSources(cmd.Context(), root)
			if err != nil {
				return err
			}
			defer src.Close()

			tasks, err := src.ListTasks(cmd.Context(), nil)
			if err != nil {
				return fmt.Errorf("failed to list tasks: %w", err)
			}

			if query != "" {
				now, err := flags.clock()
				if err != nil {
					return err
				}
				f := interpret.DefaultParser().ParseQuery(query, now)
				var matched []tasksource.Task
				for _, t := range tasks {
					if f.Matches(t.Candidate()) {
						matched = append(matched, t)
					}
				}
				tasks = matched
			}

			out := cmd.OutOrStdout()
			if flags.json {
				if tasks == nil {
					tasks = []tasksource.Task{}
				}
				return writeJSON(out, tasks)
			}
			if len(tasks) == 0 {
				fmt.Fprintln(out, "No tasks")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSTATUS\tTITLE\tPRIORITY\tCATEGORY\tDUE")
			for _, t := range tasks {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					t.ID, t.Status.Label(), t.Title, t.Priority, t.Category, formatTime(t.Due))
			}
			return w.Flush()
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&query, "query", "q", "", "Spoken read request to filter by")

	return cmd
}

func newTasksAddCmd(root *rootFlags) *cobra.Command {
	flags := &engineFlags{}

	cmd := &cobra.Command{
		Use:   "add <utterance>",
		Short: "Create a task from an utterance",
		Long: `Create a task the way the voice interface would, e.g.
  taskvoice tasks add finish the quarterly report friday high priority`,
		Args: cobra.MinimumNArgs(1),
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

			attrs := interpret.DefaultParser().ParseTask(utterance(args), now)
			task, err := src.CreateTask(cmd.Context(), tasksource.FromAttributes(attrs))
			if err != nil {
				return fmt.Errorf("failed to create task: %w", err)
			}

			out := cmd.OutOrStdout()
			if flags.json {
				return writeJSON(out, task)
			}
			fmt.Fprintf(out, "Added %s (%s)", task.Title, task.ID)
			if task.Due != nil {
				fmt.Fprintf(out, ", due %s", formatTime(task.Due))
			}
			fmt.Fprintln(out)
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}
