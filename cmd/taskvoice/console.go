package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Jayphen/taskvoice/internal/tui"
)

func newConsoleCmd(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "console",
		Short: "Try utterances interactively against your tasks",
		Long: `Launch the interactive console. Type an utterance and press enter to
see how it is interpreted as a new task, an update command and a query.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !hasTTY() {
				return fmt.Errorf("console needs an interactive terminal")
			}

			src, err := openSources(cmd.Context(), root)
			if err != nil {
				return err
			}
			defer src.Close()

			model := tui.NewModel(src, tui.Options{Version: Version})
			p := tea.NewProgram(model, tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("error running console: %w", err)
			}
			return nil
		},
	}
}

func hasTTY() bool {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
