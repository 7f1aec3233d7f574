package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Jayphen/taskvoice/internal/interpret"
	"github.com/Jayphen/taskvoice/internal/tasksource"
)

const (
	refreshInterval = 5 * time.Second
	actionTimeout   = 10 * time.Second
	statusDuration  = 3 * time.Second
)

// Options configures a console Model.
type Options struct {
	Version string
	Parser  *interpret.Parser
	Now     func() time.Time
}

// Model is the Bubbletea model for the utterance console.
type Model struct {
	// Data
	tasks         []tasksource.Task
	selectedIndex int
	analysis      *analysis
	filter        *interpret.QueryFilter

	// UI state
	loading       bool
	busy          bool
	err           error
	statusMessage string
	statusExpiry  time.Time
	input         textinput.Model
	width, height int
	version       string

	// Components
	spinner spinner.Model

	// Dependencies
	source tasksource.TaskSource
	parser *interpret.Parser
	now    func() time.Time
}

// analysis is everything the interpreter derives from one utterance.
type analysis struct {
	Text       string
	Attributes interpret.TaskAttributes
	Query      interpret.QueryFilter
	Cleaned    string
	Match      interpret.MatchResult
	Target     interpret.Status
	Evidence   interpret.StatusEvidence
}

// Messages
type (
	tasksMsg       []tasksource.Task
	errMsg         error
	tickMsg        time.Time
	statusClearMsg struct{}
	actionMsg      struct {
		status string
		err    error
	}
)

// NewModel creates a console model reading tasks from src.
func NewModel(src tasksource.TaskSource, opts Options) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(ColorCyan)

	ti := textinput.New()
	ti.Placeholder = "move the quarterly report to in progress"
	ti.CharLimit = 500
	ti.Width = 60
	ti.Prompt = "› "
	ti.Focus()

	if opts.Parser == nil {
		opts.Parser = interpret.DefaultParser()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return Model{
		version: opts.Version,
		loading: true,
		spinner: s,
		input:   ti,
		source:  src,
		parser:  opts.Parser,
		now:     opts.Now,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		textinput.Blink,
		m.fetchTasks,
		m.tick(),
	)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if msg.Width > 10 {
			m.input.Width = msg.Width - 10
		}
		return m, nil

	case tasksMsg:
		m.tasks = msg
		m.loading = false
		m.err = nil
		if visible := m.visibleTasks(); m.selectedIndex >= len(visible) {
			m.selectedIndex = max(len(visible)-1, 0)
		}
		if m.analysis != nil {
			a := m.analyze(m.analysis.Text)
			m.analysis = &a
		}
		return m, nil

	case errMsg:
		m.err = msg
		m.loading = false
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.fetchTasks, m.tick())

	case statusClearMsg:
		if m.now().After(m.statusExpiry) {
			m.statusMessage = ""
		}
		return m, nil

	case actionMsg:
		m.busy = false
		if msg.err != nil {
			m.setStatus(fmt.Sprintf("Failed: %v", msg.err))
			return m, clearStatus()
		}
		m.setStatus(msg.status)
		m.input.SetValue("")
		m.analysis = nil
		return m, tea.Batch(m.fetchTasks, clearStatus())

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleKey handles keyboard input. Keys not bound here go to the input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		if m.input.Value() != "" || m.analysis != nil {
			m.input.SetValue("")
			m.analysis = nil
			return m, nil
		}
		return m, tea.Quit

	case "up":
		if m.selectedIndex > 0 {
			m.selectedIndex--
		}
		return m, nil

	case "down":
		if m.selectedIndex < len(m.visibleTasks())-1 {
			m.selectedIndex++
		}
		return m, nil

	case "enter":
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			m.analysis = nil
			return m, nil
		}
		a := m.analyze(text)
		m.analysis = &a
		return m, nil

	case "ctrl+a":
		return m.startAction("add", m.addTask)

	case "ctrl+u":
		return m.startAction("update", m.applyStatus)

	case "ctrl+f":
		if m.filter != nil {
			m.filter = nil
			m.setStatus("Filter cleared")
		} else if m.analysis != nil {
			q := m.analysis.Query
			m.filter = &q
			m.setStatus(fmt.Sprintf("Filtering by %s query", q.Kind))
		} else {
			m.setStatus("Press enter to interpret a query first")
		}
		m.selectedIndex = 0
		return m, nil

	case "ctrl+r":
		m.loading = true
		return m, m.fetchTasks
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// startAction runs an action against the current analysis unless another
// action is still in flight.
func (m Model) startAction(name string, action func(analysis) tea.Cmd) (tea.Model, tea.Cmd) {
	if m.busy {
		m.setStatus("Still working on the last change")
		return m, nil
	}
	if m.analysis == nil {
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			m.setStatus(fmt.Sprintf("Type an utterance to %s", name))
			return m, nil
		}
		a := m.analyze(text)
		m.analysis = &a
	}
	cmd := action(*m.analysis)
	if cmd == nil {
		m.setStatus(fmt.Sprintf("Nothing to %s", name))
		return m, nil
	}
	m.busy = true
	return m, cmd
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	if m.analysis != nil {
		b.WriteString(m.renderAnalysis())
		b.WriteString("\n")
	}

	if m.err != nil {
		b.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n")
	} else {
		b.WriteString(m.renderTaskList())
	}

	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())

	return lipgloss.NewStyle().Padding(1).Render(b.String())
}

// Helper methods

func (m *Model) setStatus(msg string) {
	m.statusMessage = msg
	m.statusExpiry = m.now().Add(statusDuration)
}

// analyze interprets text against the currently loaded tasks.
func (m Model) analyze(text string) analysis {
	now := m.now()
	a := analysis{
		Text:       text,
		Attributes: m.parser.ParseTask(text, now),
		Query:      m.parser.ParseQuery(text, now),
		Cleaned:    interpret.CleanTaskName(text),
	}
	a.Match = interpret.Resolve(a.Cleaned, tasksource.Candidates(m.tasks))
	current := interpret.StatusToDo
	if a.Match.Found() {
		current = a.Match.Task.Status
	}
	a.Target, a.Evidence = interpret.ExplainTargetStatus(text, "", current)
	return a
}

// visibleTasks returns the tasks shown in the list, narrowed by the active
// query filter if there is one.
func (m Model) visibleTasks() []tasksource.Task {
	if m.filter == nil {
		return m.tasks
	}
	var out []tasksource.Task
	for _, t := range m.tasks {
		if m.filter.Matches(t.Candidate()) {
			out = append(out, t)
		}
	}
	return out
}

func (m Model) selectedTask() *tasksource.Task {
	visible := m.visibleTasks()
	if m.selectedIndex >= 0 && m.selectedIndex < len(visible) {
		return &visible[m.selectedIndex]
	}
	return nil
}

func (m Model) countDone() int {
	count := 0
	for _, t := range m.tasks {
		if t.Status == interpret.StatusDone {
			count++
		}
	}
	return count
}

// Commands

func (m Model) tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func clearStatus() tea.Cmd {
	return tea.Tick(statusDuration, func(time.Time) tea.Msg {
		return statusClearMsg{}
	})
}

func (m Model) fetchTasks() tea.Msg {
	ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
	defer cancel()
	tasks, err := m.source.ListTasks(ctx, nil)
	if err != nil {
		return errMsg(err)
	}
	return tasksMsg(tasks)
}

func (m Model) addTask(a analysis) tea.Cmd {
	if a.Attributes.TaskName == "" {
		return nil
	}
	src := m.source
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		task, err := src.CreateTask(ctx, tasksource.FromAttributes(a.Attributes))
		if err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{status: fmt.Sprintf("Added: %s", task.Title)}
	}
}

// applyStatus moves the resolved task to the target status. With no
// resolved task it falls back to the selected row.
func (m Model) applyStatus(a analysis) tea.Cmd {
	id, name := "", ""
	if a.Match.Found() {
		id, name = a.Match.Task.ID, a.Match.Task.Name
	} else if sel := m.selectedTask(); sel != nil {
		id, name = sel.ID, sel.Title
	}
	if id == "" {
		return func() tea.Msg {
			return actionMsg{err: fmt.Errorf("no task matches %q", a.Cleaned)}
		}
	}
	src, target := m.source, a.Target
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		if err := src.UpdateTask(ctx, id, tasksource.StatusUpdate(target)); err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{status: fmt.Sprintf("%s is now %s", name, target.Label())}
	}
}
