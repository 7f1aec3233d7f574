// Package notify sends desktop reminders about due tasks.
package notify

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/Jayphen/taskvoice/internal/interpret"
)

// maxNamed is how many task names a reminder spells out.
const maxNamed = 3

// Notifier delivers one notification.
type Notifier interface {
	Notify(ctx context.Context, title, message string) error
}

// Func adapts a function to Notifier.
type Func func(ctx context.Context, title, message string) error

func (f Func) Notify(ctx context.Context, title, message string) error {
	return f(ctx, title, message)
}

// Desktop shows OS-native notifications:
// - macOS: osascript (native AppleScript)
// - Linux: notify-send (libnotify)
type Desktop struct {
	// GOOS overrides runtime.GOOS.
	GOOS string
	// run executes the command; nil uses os/exec.
	run func(ctx context.Context, name string, args ...string) error
}

// Command returns the program and arguments Notify would run, or ok=false
// on platforms without a notifier.
func (d Desktop) Command(title, message string) (name string, args []string, ok bool) {
	goos := d.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}
	switch goos {
	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, escapeAppleScript(message), escapeAppleScript(title))
		return "osascript", []string{"-e", script}, true
	case "linux":
		return "notify-send", []string{title, message}, true
	default:
		return "", nil, false
	}
}

// Notify runs the platform command. Unsupported platforms are a no-op.
func (d Desktop) Notify(ctx context.Context, title, message string) error {
	name, args, ok := d.Command(title, message)
	if !ok {
		return nil
	}
	run := d.run
	if run == nil {
		run = func(ctx context.Context, name string, args ...string) error {
			return exec.CommandContext(ctx, name, args...).Run()
		}
	}
	if err := run(ctx, name, args...); err != nil {
		return fmt.Errorf("%s failed: %w", name, err)
	}
	return nil
}

// Send shows a desktop notification in the background and ignores failures.
func Send(title, message string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = Desktop{}.Notify(ctx, title, message)
	}()
}

// Reminder builds a notification for a group of tasks. It returns empty
// strings when names is empty.
func Reminder(title string, names []string) (string, string) {
	switch len(names) {
	case 0:
		return "", ""
	case 1:
		return title, names[0]
	}
	heading := fmt.Sprintf("%s (%d)", title, len(names))
	shown := names
	if len(shown) > maxNamed {
		shown = shown[:maxNamed]
	}
	message := strings.Join(shown, ", ")
	if extra := len(names) - len(shown); extra > 0 {
		message += fmt.Sprintf(" and %d more", extra)
	}
	return heading, message
}

// DueReminders sends one notification for overdue tasks and one for tasks
// due later today. It returns how many notifications were sent.
func DueReminders(ctx context.Context, n Notifier, tasks []interpret.CandidateTask, now time.Time) (int, error) {
	overdue := interpret.ParseQuery("overdue", now).Apply(tasks)

	today := interpret.ParseQuery("today", now)
	today.ExcludeDone = true
	var later []interpret.CandidateTask
	for _, t := range today.Apply(tasks) {
		if !t.Due.Before(now) {
			later = append(later, t)
		}
	}

	sent := 0
	groups := []struct {
		title string
		tasks []interpret.CandidateTask
	}{
		{"Overdue", overdue},
		{"Due today", later},
	}
	for _, g := range groups {
		title, message := Reminder(g.title, names(g.tasks))
		if title == "" {
			continue
		}
		if err := n.Notify(ctx, title, message); err != nil {
			return sent, err
		}
		sent++
	}
	return sent, nil
}

func names(tasks []interpret.CandidateTask) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Name
	}
	return out
}

// escapeAppleScript escapes special characters for AppleScript strings.
func escapeAppleScript(s string) string {
	var b strings.Builder
	for _, ch := range s {
		switch ch {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(ch)
		}
	}
	return b.String()
}
