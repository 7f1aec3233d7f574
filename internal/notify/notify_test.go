package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Jayphen/taskvoice/internal/interpret"
)

func TestEscapeAppleScript(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{
			input:    `Hello World`,
			expected: `Hello World`,
		},
		{
			input:    `Hello "World"`,
			expected: `Hello \"World\"`,
		},
		{
			input:    "Line1\nLine2\tTabbed",
			expected: `Line1\nLine2\tTabbed`,
		},
		{
			input:    `C:\Users\test`,
			expected: `C:\\Users\\test`,
		},
		{
			input:    `Quote: " Backslash: \`,
			expected: `Quote: \" Backslash: \\`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := escapeAppleScript(tt.input)
			if result != tt.expected {
				t.Errorf("escapeAppleScript(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestDesktopCommand(t *testing.T) {
	tests := []struct {
		goos     string
		wantName string
		wantOK   bool
	}{
		{goos: "darwin", wantName: "osascript", wantOK: true},
		{goos: "linux", wantName: "notify-send", wantOK: true},
		{goos: "windows", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			name, args, ok := Desktop{GOOS: tt.goos}.Command("Due today", `Pay "rent"`)
			if ok != tt.wantOK || name != tt.wantName {
				t.Fatalf("Command() = %q, %v, want %q, %v", name, ok, tt.wantName, tt.wantOK)
			}
			if tt.goos == "darwin" && args[1] != `display notification "Pay \"rent\"" with title "Due today"` {
				t.Errorf("script = %q", args[1])
			}
			if tt.goos == "linux" && (args[0] != "Due today" || args[1] != `Pay "rent"`) {
				t.Errorf("args = %q", args)
			}
		})
	}
}

func TestDesktopNotify(t *testing.T) {
	var gotName string
	d := Desktop{GOOS: "linux", run: func(_ context.Context, name string, args ...string) error {
		gotName = name
		return nil
	}}
	if err := d.Notify(context.Background(), "t", "m"); err != nil || gotName != "notify-send" {
		t.Errorf("Notify() = %v, ran %q", err, gotName)
	}

	d.run = func(context.Context, string, ...string) error { return errors.New("not installed") }
	if err := d.Notify(context.Background(), "t", "m"); err == nil {
		t.Error("expected error from failing command")
	}

	d.GOOS = "plan9"
	if err := d.Notify(context.Background(), "t", "m"); err != nil {
		t.Errorf("unsupported platform should be a no-op, got %v", err)
	}
}

func TestReminder(t *testing.T) {
	tests := []struct {
		names       []string
		wantTitle   string
		wantMessage string
	}{
		{nil, "", ""},
		{[]string{"Pay rent"}, "Overdue", "Pay rent"},
		{[]string{"a", "b"}, "Overdue (2)", "a, b"},
		{[]string{"a", "b", "c", "d", "e"}, "Overdue (5)", "a, b, c and 2 more"},
	}
	for _, tt := range tests {
		title, message := Reminder("Overdue", tt.names)
		if title != tt.wantTitle || message != tt.wantMessage {
			t.Errorf("Reminder(%v) = %q, %q, want %q, %q", tt.names, title, message, tt.wantTitle, tt.wantMessage)
		}
	}
}

func TestDueReminders(t *testing.T) {
	now := time.Date(2026, time.October, 19, 12, 0, 0, 0, time.UTC)
	at := func(day, hour int) *time.Time {
		t := time.Date(2026, time.October, day, hour, 0, 0, 0, time.UTC)
		return &t
	}
	tasks := []interpret.CandidateTask{
		{ID: "1", Name: "Pay rent", Due: at(17, 0), Status: interpret.StatusToDo},
		{ID: "2", Name: "Morning standup", Due: at(19, 9), Status: interpret.StatusToDo},
		{ID: "3", Name: "Send invoice", Due: at(19, 17), Status: interpret.StatusToDo},
		{ID: "4", Name: "Old done", Due: at(18, 0), Status: interpret.StatusDone},
		{ID: "5", Name: "Someday"},
		{ID: "6", Name: "Friday review", Due: at(23, 0)},
	}

	type note struct{ title, message string }
	var got []note
	n := Func(func(_ context.Context, title, message string) error {
		got = append(got, note{title, message})
		return nil
	})

	sent, err := DueReminders(context.Background(), n, tasks, now)
	if err != nil {
		t.Fatalf("DueReminders() error = %v", err)
	}
	want := []note{
		{"Overdue (2)", "Pay rent, Morning standup"},
		{"Due today", "Send invoice"},
	}
	if sent != len(want) || len(got) != len(want) {
		t.Fatalf("sent %d: %+v, want %+v", sent, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("notification %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestDueRemindersNothingDue(t *testing.T) {
	n := Func(func(context.Context, string, string) error {
		t.Error("no notification expected")
		return nil
	})
	sent, err := DueReminders(context.Background(), n, nil, time.Now())
	if err != nil || sent != 0 {
		t.Errorf("DueReminders() = %d, %v", sent, err)
	}
}
