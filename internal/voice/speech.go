package voice

import (
	"fmt"
	"strings"
	"time"

	"github.com/Jayphen/taskvoice/internal/interpret"
)

// spokenDate renders a due date relative to now.
func spokenDate(due, now time.Time) string {
	day := interpret.StartOfDay(due.In(now.Location()))
	today := interpret.StartOfDay(now)
	var s string
	switch {
	case day.Equal(today):
		s = "today"
	case day.Equal(today.AddDate(0, 0, 1)):
		s = "tomorrow"
	default:
		s = day.Format("Monday, January 2")
	}
	local := due.In(now.Location())
	if local.Hour() != 0 || local.Minute() != 0 {
		s += " at " + local.Format("3:04 PM")
	}
	return s
}

// spokenList joins names as "a, b and c", reading at most max of them.
func spokenList(names []string, max int) string {
	shown := names
	extra := 0
	if len(names) > max {
		shown = names[:max]
		extra = len(names) - max
	}
	if extra > 0 {
		return strings.Join(shown, ", ") + fmt.Sprintf(" and %d more", extra)
	}
	if len(shown) == 1 {
		return shown[0]
	}
	return strings.Join(shown[:len(shown)-1], ", ") + " and " + shown[len(shown)-1]
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
