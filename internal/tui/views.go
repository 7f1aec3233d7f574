package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/Jayphen/taskvoice/internal/interpret"
	"github.com/Jayphen/taskvoice/internal/tasksource"
)

// renderHeader renders the application header.
func (m Model) renderHeader() string {
	title := TitleStyle.Render("Taskvoice Console")
	version := ""
	if m.version != "" {
		version = " " + SubtitleStyle.Render("v"+m.version)
	}
	source := ""
	if m.source != nil {
		source = " · " + m.source.Info().Name
	}
	subtitle := SubtitleStyle.Render("Try utterances against your tasks" + source)

	return title + version + "\n" + subtitle
}

// renderAnalysis renders the interpretation panel for the last utterance.
func (m Model) renderAnalysis() string {
	a := m.analysis
	var b strings.Builder

	b.WriteString(SectionStyle.Render("As a new task"))
	b.WriteString("\n")
	b.WriteString(m.renderDetailRow("name", valueOrDash(a.Attributes.TaskName)))
	b.WriteString(m.renderDetailRow("due", formatDue(a.Attributes.Due, m.now())))
	b.WriteString(m.renderDetailRow("priority", string(a.Attributes.Priority)))
	b.WriteString(m.renderDetailRow("category", string(a.Attributes.Category)))

	b.WriteString("\n")
	b.WriteString(SectionStyle.Render("As a command"))
	b.WriteString("\n")
	b.WriteString(m.renderDetailRow("cleaned", valueOrDash(a.Cleaned)))
	if a.Match.Found() {
		tier := TierStyle(a.Match.Tier).Render(string(a.Match.Tier))
		b.WriteString(m.renderDetailRow("match", a.Match.Task.Name+" "+DimStyle.Render("(")+tier+DimStyle.Render(")")))
	} else {
		b.WriteString(m.renderDetailRow("match", WarningStyle.Render("no task")))
	}
	style, indicator := StatusStyle(a.Target)
	target := style.Render(indicator+" "+a.Target.Label()) + " " + DimStyle.Render("via "+string(a.Evidence))
	b.WriteString(m.renderDetailRow("status", target))

	b.WriteString("\n")
	b.WriteString(SectionStyle.Render("As a query"))
	b.WriteString("\n")
	b.WriteString(m.renderDetailRow("kind", string(a.Query.Kind)))
	b.WriteString(m.renderDetailRow("filter", describeFilter(a.Query)))
	matches := a.Query.Apply(tasksource.Candidates(m.tasks))
	b.WriteString(m.renderDetailRow("matches", fmt.Sprintf("%d of %d", len(matches), len(m.tasks))))

	box := BoxStyle
	if w := m.contentWidth(); w > 4 {
		box = box.Width(w - 2)
	}
	return box.Render(strings.TrimRight(b.String(), "\n"))
}

// renderTaskList renders the task list.
func (m Model) renderTaskList() string {
	if m.loading && len(m.tasks) == 0 {
		return m.spinner.View() + " Loading tasks..."
	}

	visible := m.visibleTasks()
	var b strings.Builder

	header := "Tasks"
	if m.filter != nil {
		header = fmt.Sprintf("%s Tasks matching %s query", IndicatorFilter, m.filter.Kind)
	}
	b.WriteString(SectionStyle.Render(header))
	b.WriteString("\n")

	if len(visible) == 0 {
		b.WriteString(DimStyle.Render("  No tasks"))
		b.WriteString("\n")
		return b.String()
	}

	for i := range visible {
		b.WriteString(m.renderTaskRow(visible, i))
		b.WriteString("\n")
	}
	return b.String()
}

// renderTaskRow renders a single task row, truncated to the terminal width.
func (m Model) renderTaskRow(tasks []tasksource.Task, index int) string {
	t := tasks[index]
	isSelected := index == m.selectedIndex

	selector := "  "
	if isSelected {
		selector = SelectedStyle.Render(IndicatorSelected + " ")
	}

	style, indicator := StatusStyle(t.Status)
	statusPart := padRight(style.Render(indicator+" "+t.Status.Label()), 14)

	nameStyle := lipgloss.NewStyle()
	if isSelected {
		nameStyle = SelectedStyle
	} else if t.Status == interpret.StatusDone {
		nameStyle = DimStyle
	}
	name := t.Title
	if m.analysis != nil && m.analysis.Match.Found() && m.analysis.Match.Task.ID == t.ID {
		name += " " + TierStyle(m.analysis.Match.Tier).Render("←")
	}
	namePart := padRight(nameStyle.Render(name), 36)

	flags := ""
	if t.Priority == interpret.PriorityHigh {
		flags += HighPriorityStyle.Render(IndicatorHigh) + " "
	}
	if t.Category == interpret.CategoryWork {
		flags += DimStyle.Render("@"+string(t.Category)) + " "
	}
	if t.Due != nil {
		flags += DimStyle.Render(formatDue(t.Due, m.now()))
	}

	row := selector + statusPart + namePart + flags
	if w := m.contentWidth(); w > 0 {
		row = ansi.Truncate(row, w, "…")
	}
	return row
}

func (m Model) contentWidth() int {
	if m.width <= 0 {
		return 0
	}
	width := m.width - 2
	if width < 0 {
		return 0
	}
	return width
}

// padRight pads a string to the specified visible width.
func padRight(s string, width int) string {
	visibleWidth := lipgloss.Width(s)
	if visibleWidth >= width {
		return s + " "
	}
	return s + strings.Repeat(" ", width-visibleWidth)
}

// renderDetailRow renders a label: value row in the analysis panel.
func (m Model) renderDetailRow(label, value string) string {
	labelStyle := DimStyle.Width(12)
	return labelStyle.Render(label) + value + "\n"
}

// renderStatusBar renders the bottom status bar.
func (m Model) renderStatusBar() string {
	total := len(m.tasks)
	done := m.countDone()

	var counts string
	if total > 0 {
		percent := float64(done) / float64(total) * 100
		counts = DimStyle.Render(RenderProgressBar(percent, 10)) + " " +
			DimStyle.Render(fmt.Sprintf("%d/%d done", done, total))
	} else {
		counts = DimStyle.Render("0 tasks")
	}
	if m.busy {
		counts += " " + m.spinner.View()
	}

	help := []string{
		HelpKeyStyle.Render("↵") + " interpret",
		HelpKeyStyle.Render("^a") + " add",
		HelpKeyStyle.Render("^u") + " set status",
		HelpKeyStyle.Render("^f") + " filter",
		HelpKeyStyle.Render("↑↓") + " select",
		HelpKeyStyle.Render("^r") + " refresh",
		HelpKeyStyle.Render("esc") + " clear/quit",
	}
	helpLine := HelpTextStyle.Render(strings.Join(help, "  "))

	sep := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), true, false, false, false).
		BorderForeground(ColorGray).
		PaddingTop(1)

	spacing := 28 - lipgloss.Width(counts)
	if spacing < 2 {
		spacing = 2
	}

	var b strings.Builder
	if m.statusMessage != "" {
		b.WriteString(StatusMsgStyle.Render(m.statusMessage))
		b.WriteString("\n")
	}
	b.WriteString(counts)
	b.WriteString(strings.Repeat(" ", spacing))
	b.WriteString(helpLine)

	return sep.Render(b.String())
}

// describeFilter lists the predicates a query filter carries.
func describeFilter(f interpret.QueryFilter) string {
	var parts []string
	if f.Window != nil {
		var start, end string
		if f.Window.Start != nil {
			start = f.Window.Start.Format("Jan 2")
		}
		if f.Window.End != nil {
			end = f.Window.End.Format("Jan 2")
		}
		parts = append(parts, fmt.Sprintf("due [%s, %s)", start, end))
	}
	if f.Status != nil {
		parts = append(parts, "status="+string(*f.Status))
	}
	if f.Category != nil {
		parts = append(parts, "category="+string(*f.Category))
	}
	if f.Priority != nil {
		parts = append(parts, "priority="+string(*f.Priority))
	}
	if f.Keyword != "" {
		parts = append(parts, fmt.Sprintf("keyword=%q", f.Keyword))
	}
	if f.ExcludeDone {
		parts = append(parts, "not done")
	}
	if len(parts) == 0 {
		return "everything"
	}
	return strings.Join(parts, ", ")
}

// formatDue formats a due date relative to now.
func formatDue(due *time.Time, now time.Time) string {
	if due == nil {
		return "-"
	}
	day := interpret.StartOfDay(now.In(due.Location()))
	var label string
	switch d := interpret.StartOfDay(*due); {
	case d.Equal(day):
		label = "today"
	case d.Equal(day.AddDate(0, 0, 1)):
		label = "tomorrow"
	case d.Before(day):
		label = "overdue " + due.Format("Jan 2")
	default:
		label = due.Format("Mon Jan 2")
	}
	if due.Hour() != 0 || due.Minute() != 0 {
		label += due.Format(" 15:04")
	}
	return label
}

func valueOrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
