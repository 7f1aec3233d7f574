package voice

import (
	"errors"
	"testing"
	"time"

	"github.com/Jayphen/taskvoice/internal/interpret"
)

func TestParseSlots(t *testing.T) {
	raw := map[string]RawSlot{
		"task":     {Name: "task", Value: "  quarterly report "},
		"status":   {Name: "status", Value: "In Progress"},
		"date":     {Name: "date", Value: "2026-10-21"},
		"priority": {Name: "priority"},
		"query":    {Value: "today"},
	}
	slots, err := ParseSlots(raw, time.UTC)
	if err != nil {
		t.Fatalf("ParseSlots() error = %v", err)
	}

	tests := []struct {
		name string
		kind SlotKind
		text string
	}{
		{name: SlotTask, kind: SlotText, text: "quarterly report"},
		{name: SlotStatus, kind: SlotStatusValue, text: "In Progress"},
		{name: SlotDate, kind: SlotDateValue, text: "2026-10-21"},
		{name: SlotPriority, kind: SlotEmpty},
		{name: SlotQuery, kind: SlotText, text: "today"},
		{name: SlotCategory, kind: SlotEmpty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := slots.Get(tt.name)
			if got.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", got.Kind, tt.kind)
			}
			if got.Text != tt.text {
				t.Errorf("Text = %q, want %q", got.Text, tt.text)
			}
		})
	}

	if slots.Get(SlotStatus).Status != interpret.StatusInProcess {
		t.Errorf("Status = %q", slots.Get(SlotStatus).Status)
	}
	if want := time.Date(2026, time.October, 21, 0, 0, 0, 0, time.UTC); !slots.Get(SlotDate).Date.Equal(want) {
		t.Errorf("Date = %v, want %v", slots.Get(SlotDate).Date, want)
	}

	raw2 := slots.Raw()
	if _, ok := raw2[SlotPriority]; ok {
		t.Error("Raw() should drop empty slots")
	}
	if raw2[SlotStatus] != "In Progress" {
		t.Errorf("Raw()[status] = %q", raw2[SlotStatus])
	}
}

func TestParseSlotsKeepsUnrecognizedValuesAsText(t *testing.T) {
	slots, err := ParseSlots(map[string]RawSlot{
		"status": {Name: "status", Value: "someday"},
		"date":   {Name: "date", Value: "2026-W43"},
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if slots.Get(SlotStatus).Kind != SlotText {
		t.Errorf("status Kind = %v, want text", slots.Get(SlotStatus).Kind)
	}
	if slots.Get(SlotDate).Kind != SlotText {
		t.Errorf("date Kind = %v, want text", slots.Get(SlotDate).Kind)
	}
}

func TestParseSlotsRejectsUnknownNames(t *testing.T) {
	_, err := ParseSlots(map[string]RawSlot{"color": {Name: "color", Value: "blue"}}, time.UTC)
	if !errors.Is(err, ErrInvalidSlot) {
		t.Errorf("error = %v, want ErrInvalidSlot", err)
	}
}

func TestSpokenList(t *testing.T) {
	tests := []struct {
		names []string
		max   int
		want  string
	}{
		{[]string{"a"}, 5, "a"},
		{[]string{"a", "b"}, 5, "a and b"},
		{[]string{"a", "b", "c"}, 5, "a, b and c"},
		{[]string{"a", "b", "c"}, 2, "a, b and 1 more"},
	}
	for _, tt := range tests {
		if got := spokenList(tt.names, tt.max); got != tt.want {
			t.Errorf("spokenList(%v, %d) = %q, want %q", tt.names, tt.max, got, tt.want)
		}
	}
}

func TestSpokenDate(t *testing.T) {
	tests := []struct {
		due  time.Time
		want string
	}{
		{*day(0, 0), "today"},
		{*day(1, 0), "tomorrow"},
		{*day(1, 15), "tomorrow at 3:00 PM"},
		{*day(4, 0), "Friday, October 23"},
	}
	for _, tt := range tests {
		if got := spokenDate(tt.due, monday); got != tt.want {
			t.Errorf("spokenDate(%v) = %q, want %q", tt.due, got, tt.want)
		}
	}
}
