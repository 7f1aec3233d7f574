package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Jayphen/taskvoice/internal/config"
	"github.com/Jayphen/taskvoice/internal/interpret"
	"github.com/Jayphen/taskvoice/internal/tasksource"
)

// engineFlags are shared by the interpretation commands.
type engineFlags struct {
	json bool
	now  string
}

func (f *engineFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.json, "json", false, "Output in JSON format")
	cmd.Flags().StringVar(&f.now, "now", "", "Reference time (RFC 3339 or YYYY-MM-DD) for relative dates")
}

// clock resolves --now in the configured time zone.
func (f *engineFlags) clock() (time.Time, error) {
	loc := time.Local
	if cfg, err := config.Get(); err == nil {
		if l, err := cfg.Location(); err == nil {
			loc = l
		}
	}
	return parseNow(f.now, loc, time.Now)
}

// parseNow accepts RFC 3339, a local date-time or a bare date.
func parseNow(value string, loc *time.Location, now func() time.Time) (time.Time, error) {
	if value == "" {
		return now().In(loc), nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.In(loc), nil
	}
	for _, layout := range []string{"2006-01-02T15:04", "2006-01-02 15:04", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid --now %q: want RFC 3339 or YYYY-MM-DD", value)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func utterance(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func newParseCmd() *cobra.Command {
	flags := &engineFlags{}
	cmd := &cobra.Command{
		Use:   "parse <utterance>",
		Short: "Extract task attributes from a creation utterance",
		Long: `Extract the task name, due date, status, priority and category from
an utterance such as "add finish the report tomorrow at 3pm high priority".`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			now, err := flags.clock()
			if err != nil {
				return err
			}
			attrs := interpret.DefaultParser().ParseTask(utterance(args), now)
			out := cmd.OutOrStdout()
			if flags.json {
				return writeJSON(out, attrs)
			}
			fmt.Fprintf(out, "name:      %s\n", attrs.TaskName)
			fmt.Fprintf(out, "cleaned:   %s\n", attrs.CleanedName)
			fmt.Fprintf(out, "due:       %s\n", formatTime(attrs.Due))
			fmt.Fprintf(out, "status:    %s\n", attrs.Status)
			fmt.Fprintf(out, "priority:  %s\n", attrs.Priority)
			fmt.Fprintf(out, "category:  %s\n", attrs.Category)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newQueryCmd() *cobra.Command {
	flags := &engineFlags{}
	cmd := &cobra.Command{
		Use:   "query <utterance>",
		Short: "Build a task filter from a read request",
		Long:  `Turn a request such as "what's due this week" into a task filter.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			now, err := flags.clock()
			if err != nil {
				return err
			}
			f := interpret.DefaultParser().ParseQuery(utterance(args), now)
			out := cmd.OutOrStdout()
			if flags.json {
				return writeJSON(out, f)
			}
			fmt.Fprintf(out, "kind:      %s\n", f.Kind)
			if f.Window != nil {
				fmt.Fprintf(out, "from:      %s\n", formatTime(f.Window.Start))
				fmt.Fprintf(out, "until:     %s\n", formatTime(f.Window.End))
			}
			if f.Status != nil {
				fmt.Fprintf(out, "status:    %s\n", *f.Status)
			}
			if f.Category != nil {
				fmt.Fprintf(out, "category:  %s\n", *f.Category)
			}
			if f.Priority != nil {
				fmt.Fprintf(out, "priority:  %s\n", *f.Priority)
			}
			if f.Keyword != "" {
				fmt.Fprintf(out, "keyword:   %s\n", f.Keyword)
			}
			if f.ExcludeDone {
				fmt.Fprintln(out, "open only: true")
			}
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newCleanCmd() *cobra.Command {
	flags := &engineFlags{}
	cmd := &cobra.Command{
		Use:   "clean <utterance>",
		Short: "Strip command words from a task reference",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cleaned := interpret.CleanTaskName(utterance(args))
			if flags.json {
				return writeJSON(cmd.OutOrStdout(), map[string]string{"cleaned_name": cleaned})
			}
			fmt.Fprintln(cmd.OutOrStdout(), cleaned)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

// resolveOutput is the JSON shape of the resolve command.
type resolveOutput struct {
	Phrase      string                `json:"phrase"`
	CleanedName string                `json:"cleaned_name"`
	Match       interpret.MatchResult `json:"match"`
}

func newResolveCmd(root *rootFlags) *cobra.Command {
	flags := &engineFlags{}
	cmd := &cobra.Command{
		Use:   "resolve <utterance>",
		Short: "Find the task an utterance refers to",
		Long: `Clean the utterance and resolve it against the tasks in the configured
sources, reporting which matching tier found the task.`,
		Args: cobra.MinimumNArgs(1),
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

			phrase := utterance(args)
			result := resolveOutput{Phrase: phrase, CleanedName: interpret.CleanTaskName(phrase)}
			result.Match = interpret.Resolve(result.CleanedName, tasksource.Candidates(tasks))

			out := cmd.OutOrStdout()
			if flags.json {
				return writeJSON(out, result)
			}
			if !result.Match.Found() {
				fmt.Fprintf(out, "no task matches %q\n", result.CleanedName)
				return nil
			}
			fmt.Fprintf(out, "%s (%s) via %s\n", result.Match.Task.Name, result.Match.Task.ID, result.Match.Tier)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

// statusOutput is the JSON shape of the status command.
type statusOutput struct {
	Status   interpret.Status         `json:"status"`
	Evidence interpret.StatusEvidence `json:"evidence"`
}

func newStatusCmd() *cobra.Command {
	flags := &engineFlags{}
	var slot, current string
	cmd := &cobra.Command{
		Use:   "status <utterance>",
		Short: "Work out which status an update utterance asks for",
		Long: `Determine the target status for an update utterance. Explicit evidence
wins: the --slot value, then "to <status>" and "move to <status>" phrases,
then command keywords and completion phrases. Otherwise the --current
status advances one step (to do, in progress, done, to do).`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, ok := interpret.NormalizeStatus(current)
			if !ok {
				return fmt.Errorf("invalid --current status %q", current)
			}
			status, evidence := interpret.ExplainTargetStatus(utterance(args), slot, from)
			out := cmd.OutOrStdout()
			if flags.json {
				return writeJSON(out, statusOutput{Status: status, Evidence: evidence})
			}
			fmt.Fprintf(out, "%s (%s)\n", status, evidence)
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&slot, "slot", "", "Explicit status slot value")
	cmd.Flags().StringVar(&current, "current", string(interpret.StatusToDo), "Current status of the task")
	return cmd
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	if t.Hour() == 0 && t.Minute() == 0 {
		return t.Format("Mon 2006-01-02")
	}
	return t.Format("Mon 2006-01-02 15:04")
}
