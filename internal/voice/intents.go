package voice

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Jayphen/taskvoice/internal/interpret"
	"github.com/Jayphen/taskvoice/internal/tasksource"
)

// pronouns refer back to the task of the previous turn. They are matched
// after command stripping, so "mark it as done" counts.
var pronouns = map[string]bool{"it": true, "that": true, "this": true}

func (h *Handler) addTask(t *turn) *Response {
	text := t.slots.Text(SlotTask)
	if text == "" {
		return h.clarify(t, "What task should I add?")
	}

	attrs := h.opts.Parser.ParseTask(text, t.now)
	if d := t.slots.Get(SlotDate); d.Kind == SlotDateValue {
		due := d.Date
		attrs.Due = &due
	}
	if p := t.slots.Get(SlotPriority); p.Present() {
		attrs.Priority = interpret.NormalizePriority(p.Text)
	}
	if c := t.slots.Get(SlotCategory); c.Present() {
		attrs.Category = interpret.NormalizeCategory(c.Text)
	}

	task, err := h.tasks.CreateTask(t.ctx, tasksource.FromAttributes(attrs))
	if err != nil {
		return h.sourceFailure(t, err)
	}
	t.state.Remember(task.ID, task.Title)
	t.log.WithField("task_id", task.ID).Info("task added")

	speech := fmt.Sprintf("Added %s", task.Title)
	if task.Due != nil {
		speech += ", due " + spokenDate(*task.Due, t.now)
	}
	return followUp(speech+".").WithCard("Task added", task.Title)
}

// changeTask covers update, complete and delete, which all start by
// resolving the spoken phrase to one existing task.
func (h *Handler) changeTask(t *turn) *Response {
	phrase := t.slots.Text(SlotTask)
	if phrase == "" {
		return h.clarify(t, "Which task?")
	}

	task, resp := h.resolve(t, phrase)
	if resp != nil {
		return resp
	}

	switch t.intent {
	case DeleteTaskIntent:
		if err := h.tasks.DeleteTask(t.ctx, task.ID); err != nil {
			return h.sourceFailure(t, err)
		}
		t.state.Forget()
		t.log.WithField("task_id", task.ID).Info("task deleted")
		return followUp(fmt.Sprintf("Deleted %s.", task.Title))

	case CompleteTaskIntent:
		if err := h.tasks.UpdateTask(t.ctx, task.ID, tasksource.StatusUpdate(interpret.StatusDone)); err != nil {
			return h.sourceFailure(t, err)
		}
		t.state.Remember(task.ID, task.Title)
		t.log.WithField("task_id", task.ID).Info("task completed")
		return followUp(fmt.Sprintf("Nice work. %s is done.", task.Title))
	}

	status := t.slots.Get(SlotStatus)
	target, evidence := interpret.ExplainTargetStatus(phrase, status.Text, task.Status)
	update := tasksource.StatusUpdate(target)
	if p := t.slots.Get(SlotPriority); p.Present() {
		pri := interpret.NormalizePriority(p.Text)
		update.Priority = &pri
	}
	if c := t.slots.Get(SlotCategory); c.Present() {
		cat := interpret.NormalizeCategory(c.Text)
		update.Category = &cat
	}
	if d := t.slots.Get(SlotDate); d.Kind == SlotDateValue {
		due := d.Date
		update.Due = &due
	}

	if err := h.tasks.UpdateTask(t.ctx, task.ID, update); err != nil {
		return h.sourceFailure(t, err)
	}
	t.state.Remember(task.ID, task.Title)
	t.log.WithFields(map[string]interface{}{
		"task_id":  task.ID,
		"status":   string(target),
		"evidence": string(evidence),
	}).Info("task updated")
	return followUp(fmt.Sprintf("%s is now %s.", task.Title, target.Label()))
}

// resolve finds the task a phrase refers to. When it cannot, the returned
// response asks the user and the intent is parked for ProvideTaskIntent.
func (h *Handler) resolve(t *turn, phrase string) (*tasksource.Task, *Response) {
	if pronouns[interpret.StripCommand(phrase)] {
		if t.state.LastTaskID == "" {
			return nil, h.clarify(t, "Which task do you mean?")
		}
		task, err := h.tasks.GetTask(t.ctx, t.state.LastTaskID)
		if errors.Is(err, tasksource.ErrTaskNotFound) {
			t.state.Forget()
			return nil, h.clarify(t, "I can't find that task anymore. Which task do you mean?")
		}
		if err != nil {
			return nil, h.sourceFailure(t, err)
		}
		t.log.WithField("task_id", task.ID).Debug("resolved pronoun")
		return task, nil
	}

	tasks, err := h.tasks.ListTasks(t.ctx, nil)
	if err != nil {
		return nil, h.sourceFailure(t, err)
	}
	cleaned := interpret.CleanTaskName(phrase)
	match := interpret.Resolve(cleaned, tasksource.Candidates(tasks))
	if !match.Found() {
		t.log.WithField("phrase", cleaned).Info("no task matched")
		return nil, h.clarify(t, fmt.Sprintf("I couldn't find a task called %s. Which task did you mean?", cleaned))
	}
	t.log.WithField("tier", string(match.Tier)).WithField("task_id", match.Task.ID).Debug("resolved task")

	for i := range tasks {
		if tasks[i].ID == match.Task.ID {
			return &tasks[i], nil
		}
	}
	return nil, h.sourceFailure(t, tasksource.ErrTaskNotFound)
}

func (h *Handler) queryTasks(t *turn) *Response {
	text := t.slots.Text(SlotQuery)
	if text == "" {
		text = t.slots.Text(SlotTask)
	}
	filter := h.opts.Parser.ParseQuery(text, t.now)

	tasks, err := h.tasks.ListTasks(t.ctx, nil)
	if err != nil {
		return h.sourceFailure(t, err)
	}
	matched := filter.Apply(tasksource.Candidates(tasks))
	t.log.WithField("kind", string(filter.Kind)).WithField("matches", len(matched)).Debug("query")

	if len(matched) == 0 {
		return followUp("You don't have any matching tasks.")
	}
	names := make([]string, len(matched))
	for i, c := range matched {
		names[i] = c.Name
	}
	speech := fmt.Sprintf("You have %s: %s.", plural(len(matched), "task"), spokenList(names, h.opts.MaxListed))
	return followUp(speech).WithCard("Tasks", strings.Join(names, "\n"))
}

// provideTask answers an earlier clarification by replaying the parked
// intent with the new task phrase.
func (h *Handler) provideTask(t *turn) *Response {
	if !t.state.HasPending() {
		return Ask("Sorry, what would you like to do with that task?", "")
	}

	slots, err := parseValues(t.state.PendingSlots, h.opts.Location)
	if err != nil {
		t.state.ClearPending()
		return Ask("Sorry, let's start over. What would you like to do?", "")
	}
	for name, slot := range t.slots {
		if slot.Present() {
			slots[name] = slot
		}
	}
	t.intent = t.state.PendingIntent
	t.slots = slots
	t.state.ClearPending()
	t.log = t.log.WithField("resumed_intent", t.intent)
	return h.dispatch(t)
}

// clarify parks the current intent and asks for a task phrase.
func (h *Handler) clarify(t *turn, question string) *Response {
	pending := t.slots.Raw()
	delete(pending, SlotTask)
	t.state.SetPending(t.intent, pending)
	return Ask(question, "Which task?")
}

// followUp keeps the session open so the next turn can say "it".
func followUp(speech string) *Response {
	return Ask(speech+" Anything else?", "Anything else?")
}

func (h *Handler) sourceFailure(t *turn, err error) *Response {
	t.log.WithError(err).Error("task source failed")
	return Tell("Sorry, I couldn't reach your task list right now.")
}
