package interpret

import (
	"regexp"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// DateMatch is a date expression found in text. Index and Text locate the
// literal span so callers can cut it out. Date-only expressions carry
// midnight and HasTime false.
type DateMatch struct {
	Time    time.Time
	Index   int
	Text    string
	HasTime bool
}

// End returns the byte offset just past the matched span.
func (m DateMatch) End() int {
	return m.Index + len(m.Text)
}

// DateParser finds the single best date anchor in text relative to now.
type DateParser interface {
	Find(text string, now time.Time) (DateMatch, bool)
}

// DateParserFunc adapts a function to DateParser.
type DateParserFunc func(text string, now time.Time) (DateMatch, bool)

// Find calls f.
func (f DateParserFunc) Find(text string, now time.Time) (DateMatch, bool) {
	return f(text, now)
}

var isoDatePattern = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)

// NaturalDates parses ISO dates directly and everything else ("tomorrow",
// "next friday at 5pm", "in 2 days") with the when grammar.
type NaturalDates struct {
	w *when.Parser
}

// NewNaturalDates returns a DateParser with the English and common rule sets.
func NewNaturalDates() *NaturalDates {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &NaturalDates{w: w}
}

var (
	timeOfDayPattern  = regexp.MustCompile(`(?i)(?:\d(?:\s*(?:a\.?m\b\.?|p\.?m\b\.?))|\d:\d{2}|\b(?:noon|midnight|morning|afternoon|evening|tonight|hours?|hrs?|minutes?|mins?)\b)`)
	monthNamePattern  = regexp.MustCompile(`(?i)\b(?:jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\b`)
	dayOfMonthPattern = regexp.MustCompile(`(?i)\d|\b(?:first|second|third|fourth|fifth|sixth|seventh|eighth|ninth|tenth|eleventh|twelfth|thirteenth|fourteenth|fifteenth|sixteenth|seventeenth|eighteenth|nineteenth|twentieth|thirtieth)\b`)
	yearPattern       = regexp.MustCompile(`\b\d{4}\b`)
)

// maxDateAttempts bounds how many rejected spans Find masks before giving up.
const maxDateAttempts = 3

// Find returns the first date expression in text. A month name with no day
// is not a date, and a month date without a year never lands in the past.
func (d *NaturalDates) Find(text string, now time.Time) (DateMatch, bool) {
	if strings.TrimSpace(text) == "" {
		return DateMatch{}, false
	}
	if loc := isoDatePattern.FindStringIndex(text); loc != nil {
		if t, err := time.ParseInLocation("2006-01-02", text[loc[0]:loc[1]], now.Location()); err == nil {
			return DateMatch{Time: t, Index: loc[0], Text: text[loc[0]:loc[1]]}, true
		}
	}

	masked := text
	for range maxDateAttempts {
		r, err := d.w.Parse(masked, now)
		if err != nil || r == nil {
			return DateMatch{}, false
		}
		idx, matched := trimMatch(masked, r.Index, r.Text)
		if matched == "" {
			return DateMatch{}, false
		}
		if isBareMonth(matched) {
			masked = masked[:idx] + strings.Repeat(" ", len(matched)) + masked[idx+len(matched):]
			continue
		}

		m := DateMatch{Time: r.Time, Index: idx, Text: text[idx : idx+len(matched)]}
		m.HasTime = timeOfDayPattern.MatchString(matched)
		if !m.HasTime {
			m.Time = StartOfDay(m.Time)
		}
		if monthNamePattern.MatchString(matched) && !yearPattern.MatchString(matched) &&
			m.Time.Before(StartOfDay(now)) {
			m.Time = m.Time.AddDate(1, 0, 0)
		}
		return m, true
	}
	return DateMatch{}, false
}

// isBareMonth reports whether s names a month without a day.
func isBareMonth(s string) bool {
	return monthNamePattern.MatchString(s) && !dayOfMonthPattern.MatchString(s)
}

// trimMatch narrows a reported span to its non-space content.
func trimMatch(text string, index int, matched string) (int, string) {
	if index < 0 || index+len(matched) > len(text) {
		i := strings.Index(strings.ToLower(text), strings.ToLower(strings.TrimSpace(matched)))
		if i < 0 {
			return 0, ""
		}
		return i, text[i : i+len(strings.TrimSpace(matched))]
	}
	lead := len(matched) - len(strings.TrimLeft(matched, " \t,.;"))
	trimmed := strings.Trim(matched, " \t,.;")
	return index + lead, trimmed
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// StartOfWeek returns midnight of the Monday on or before t.
func StartOfWeek(t time.Time) time.Time {
	day := StartOfDay(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}
