package voice

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Jayphen/taskvoice/internal/interpret"
)

// Slot names the interaction model may send.
const (
	SlotTask     = "task"
	SlotQuery    = "query"
	SlotStatus   = "status"
	SlotDate     = "date"
	SlotPriority = "priority"
	SlotCategory = "category"
)

var knownSlots = map[string]bool{
	SlotTask:     true,
	SlotQuery:    true,
	SlotStatus:   true,
	SlotDate:     true,
	SlotPriority: true,
	SlotCategory: true,
}

// ErrInvalidSlot is returned by ParseSlots for slots outside the model.
var ErrInvalidSlot = errors.New("invalid slot")

// SlotKind tells which field of a Slot is meaningful.
type SlotKind int

const (
	SlotEmpty SlotKind = iota
	SlotText
	SlotStatusValue
	SlotDateValue
)

func (k SlotKind) String() string {
	switch k {
	case SlotText:
		return "text"
	case SlotStatusValue:
		return "status"
	case SlotDateValue:
		return "date"
	default:
		return "empty"
	}
}

// Slot is a validated slot value. Text always holds the raw value so the
// slot can be replayed after a clarification.
type Slot struct {
	Kind   SlotKind
	Text   string
	Status interpret.Status
	Date   time.Time
}

// Present reports whether the slot carried a value.
func (s Slot) Present() bool { return s.Kind != SlotEmpty }

// Slots maps slot name to validated value.
type Slots map[string]Slot

// Get returns the named slot, empty when absent.
func (s Slots) Get(name string) Slot { return s[name] }

// Text returns the raw text of the named slot.
func (s Slots) Text(name string) string { return s[name].Text }

// Raw flattens the slots back to name/value pairs for session storage.
func (s Slots) Raw() map[string]string {
	out := make(map[string]string, len(s))
	for name, slot := range s {
		if slot.Present() {
			out[name] = slot.Text
		}
	}
	return out
}

// ParseSlots validates platform slots. Dates are ISO calendar dates read in
// loc. A status the engine does not recognize stays text so the status
// resolver falls through to the utterance.
func ParseSlots(raw map[string]RawSlot, loc *time.Location) (Slots, error) {
	values := make(map[string]string, len(raw))
	for key, rs := range raw {
		name := rs.Name
		if name == "" {
			name = key
		}
		values[name] = rs.Value
	}
	return parseValues(values, loc)
}

func parseValues(values map[string]string, loc *time.Location) (Slots, error) {
	if loc == nil {
		loc = time.Local
	}
	slots := make(Slots, len(values))
	for name, value := range values {
		if !knownSlots[name] {
			return nil, fmt.Errorf("%w: %q", ErrInvalidSlot, name)
		}
		value = strings.TrimSpace(value)
		if value == "" {
			slots[name] = Slot{}
			continue
		}

		slot := Slot{Kind: SlotText, Text: value}
		switch name {
		case SlotStatus:
			if st, ok := interpret.NormalizeStatus(value); ok {
				slot.Kind = SlotStatusValue
				slot.Status = st
			}
		case SlotDate:
			if d, err := time.ParseInLocation("2006-01-02", value, loc); err == nil {
				slot.Kind = SlotDateValue
				slot.Date = d
			}
		}
		slots[name] = slot
	}
	return slots, nil
}
