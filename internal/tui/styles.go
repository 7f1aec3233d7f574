// Package tui implements the interactive utterance console using Bubbletea.
package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Jayphen/taskvoice/internal/interpret"
)

// Color palette
var (
	ColorCyan    = lipgloss.Color("86")
	ColorGreen   = lipgloss.Color("78")
	ColorYellow  = lipgloss.Color("221")
	ColorRed     = lipgloss.Color("196")
	ColorMagenta = lipgloss.Color("213")
	ColorBlue    = lipgloss.Color("111")
	ColorGray    = lipgloss.Color("245")
	ColorDimGray = lipgloss.Color("239")
)

// Task status styles
var (
	StatusToDoStyle      = lipgloss.NewStyle().Foreground(ColorGray)
	StatusInProcessStyle = lipgloss.NewStyle().Foreground(ColorYellow)
	StatusDoneStyle      = lipgloss.NewStyle().Foreground(ColorGreen)
)

// Common styles
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorCyan)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(ColorCyan).
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(ColorDimGray)

	BoldStyle = lipgloss.NewStyle().Bold(true)

	// Box around the interpretation panel
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorGray).
			Padding(0, 1)

	SectionStyle = lipgloss.NewStyle().
			Foreground(ColorGreen).
			Bold(true)

	HelpKeyStyle = lipgloss.NewStyle().
			Foreground(ColorCyan)

	HelpTextStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorRed)

	StatusMsgStyle = lipgloss.NewStyle().
			Foreground(ColorCyan)

	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorYellow)

	HighPriorityStyle = lipgloss.NewStyle().
				Foreground(ColorRed).
				Bold(true)
)

// Indicators
const (
	IndicatorToDo      = "○"
	IndicatorInProcess = "◐"
	IndicatorDone      = "✓"
	IndicatorHigh      = "!"
	IndicatorSelected  = "❯"
	IndicatorFilter    = "⧩"
)

// Progress bar characters
const (
	ProgressFilled = "█"
	ProgressEmpty  = "░"
)

// RenderProgressBar renders a progress bar for the given percentage.
func RenderProgressBar(percent float64, width int) string {
	if width <= 0 {
		width = 20
	}
	filled := int((percent / 100) * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat(ProgressFilled, filled) + strings.Repeat(ProgressEmpty, width-filled)
}

// StatusStyle returns the style and indicator for a task status.
func StatusStyle(s interpret.Status) (lipgloss.Style, string) {
	switch s {
	case interpret.StatusInProcess:
		return StatusInProcessStyle, IndicatorInProcess
	case interpret.StatusDone:
		return StatusDoneStyle, IndicatorDone
	default:
		return StatusToDoStyle, IndicatorToDo
	}
}

// TierStyle colors a resolver tier by how strict the match was.
func TierStyle(tier interpret.MatchTier) lipgloss.Style {
	switch tier {
	case interpret.TierExact, interpret.TierStemmed:
		return lipgloss.NewStyle().Foreground(ColorGreen)
	case interpret.TierBagOfWord, interpret.TierPartial:
		return lipgloss.NewStyle().Foreground(ColorBlue)
	case interpret.TierFuzzy, interpret.TierSubstring:
		return lipgloss.NewStyle().Foreground(ColorMagenta)
	default:
		return DimStyle
	}
}
