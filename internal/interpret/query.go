package interpret

import (
	"regexp"
	"strings"
	"time"
)

// FilterKind describes which predicates a QueryFilter carries.
type FilterKind string

const (
	KindTime        FilterKind = "time"
	KindStatus      FilterKind = "status"
	KindCategory    FilterKind = "category"
	KindPriority    FilterKind = "priority"
	KindKeyword     FilterKind = "keyword"
	KindCombination FilterKind = "combination"
	KindAll         FilterKind = "all"
)

// TimeWindow is the half-open interval [Start, End). A nil bound is open.
type TimeWindow struct {
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`
}

// Contains reports whether t falls inside the window.
func (w TimeWindow) Contains(t time.Time) bool {
	if w.Start != nil && t.Before(*w.Start) {
		return false
	}
	if w.End != nil && !t.Before(*w.End) {
		return false
	}
	return true
}

// QueryFilter is a declarative description of a read request. All present
// predicates must hold for a task to match.
type QueryFilter struct {
	Kind        FilterKind  `json:"kind"`
	Window      *TimeWindow `json:"window,omitempty"`
	Status      *Status     `json:"status,omitempty"`
	Category    *Category   `json:"category,omitempty"`
	Priority    *Priority   `json:"priority,omitempty"`
	Keyword     string      `json:"keyword,omitempty"`
	ExcludeDone bool        `json:"exclude_done,omitempty"`
}

// Matches reports whether task satisfies every predicate in the filter.
func (f QueryFilter) Matches(task CandidateTask) bool {
	if f.Window != nil {
		if task.Due == nil || !f.Window.Contains(*task.Due) {
			return false
		}
	}
	if f.ExcludeDone && task.Status == StatusDone {
		return false
	}
	if f.Status != nil && task.Status != *f.Status {
		return false
	}
	if f.Category != nil && task.Category != *f.Category {
		return false
	}
	if f.Priority != nil && task.Priority != *f.Priority {
		return false
	}
	if f.Keyword != "" {
		return partialContainment(NewPhrase(f.Keyword), NewPhrase(task.Name))
	}
	return true
}

// Apply returns the tasks matching the filter, preserving order.
func (f QueryFilter) Apply(tasks []CandidateTask) []CandidateTask {
	var out []CandidateTask
	for _, t := range tasks {
		if f.Matches(t) {
			out = append(out, t)
		}
	}
	return out
}

var queryStopWords = map[string]bool{
	"what": true, "whats": true, "which": true, "show": true, "list": true,
	"tell": true, "give": true, "find": true, "have": true, "has": true,
	"are": true, "is": true, "the": true, "my": true, "any": true, "all": true,
	"tasks": true, "task": true, "things": true, "thing": true, "items": true,
	"due": true, "for": true, "with": true, "and": true, "about": true,
	"that": true, "there": true, "get": true, "read": true, "you": true,
	"can": true, "could": true, "would": true, "please": true, "how": true,
	"many": true, "much": true, "does": true, "did": true, "need": true,
	"anything": true, "everything": true, "something": true, "from": true,
	"got": true, "left": true, "still": true, "coming": true, "up": true,
	"upcoming": true, "todos": true, "what's": true,
}

var (
	overduePattern  = compileKeyword("overdue", false).pattern
	pastDuePattern  = compileKeyword("past due", false).pattern
	todayPattern    = regexp.MustCompile(`(?i)\b(?:today|tonight)\b`)
	tomorrowPattern = compileKeyword("tomorrow", false).pattern
	thisWeekPattern = regexp.MustCompile(`(?i)\b(?:this|the)\s+week\b`)
	nextWeekPattern = compileKeyword("next week", false).pattern
	monthPattern    = compileKeyword("this month", false).pattern
	boundPattern    = regexp.MustCompile(`(?i)\b(before|by|until|after|since)\s+`)
)

// ParseQuery turns a read request ("what's due this week", "show my work
// tasks") into a QueryFilter. Relative phrases are resolved against now.
func (p *Parser) ParseQuery(text string, now time.Time) QueryFilter {
	residual := collapseSpaces(strings.ToLower(text))
	var f QueryFilter
	var kinds []FilterKind

	if window, rest, excludeDone, ok := p.timeWindow(residual, now); ok {
		f.Window = &window
		f.ExcludeDone = excludeDone
		residual = rest
		kinds = append(kinds, KindTime)
	}

	statusFound := false
	if loc, ok := matchAny(openKeywords, residual); ok {
		f.ExcludeDone = true
		residual = cutSpan(residual, loc[0], loc[1])
		statusFound = true
	}
	if hit, ok := findKeyword(statusKeywords, residual); ok {
		s := hit.value
		f.Status = &s
		residual = cutSpan(residual, hit.start, hit.end)
		statusFound = true
	}
	if statusFound {
		kinds = append(kinds, KindStatus)
	}
	if hit, ok := findKeyword(categoryKeywords, residual); ok {
		c := hit.value
		f.Category = &c
		residual = cutSpan(residual, hit.start, hit.end)
		kinds = append(kinds, KindCategory)
	}
	if hit, ok := findKeyword(priorityKeywords, residual); ok {
		pr := hit.value
		f.Priority = &pr
		residual = cutSpan(residual, hit.start, hit.end)
		kinds = append(kinds, KindPriority)
	}

	switch len(kinds) {
	case 0:
		f.Keyword = queryKeyword(residual)
		if f.Keyword != "" {
			f.Kind = KindKeyword
		} else {
			f.Kind = KindAll
		}
	case 1:
		f.Kind = kinds[0]
	default:
		f.Kind = KindCombination
	}
	return f
}

// timeWindow recognizes one time phrase and returns its window together with
// the text that remains once the phrase is removed.
func (p *Parser) timeWindow(text string, now time.Time) (TimeWindow, string, bool, bool) {
	if loc := overduePattern.FindStringIndex(text); loc != nil {
		end := now
		return TimeWindow{End: &end}, cutSpan(text, loc[0], loc[1]), true, true
	}
	if loc := pastDuePattern.FindStringIndex(text); loc != nil {
		end := now
		return TimeWindow{End: &end}, cutSpan(text, loc[0], loc[1]), true, true
	}

	if m := boundPattern.FindStringSubmatchIndex(text); m != nil {
		if target, n, ok := p.anchoredWindow(text[m[1]:], now); ok {
			rest := cutSpan(text, m[0], m[1]+n)
			switch text[m[2]:m[3]] {
			case "before":
				return TimeWindow{End: target.Start}, rest, false, true
			case "by", "until":
				return TimeWindow{End: target.End}, rest, false, true
			case "after":
				return TimeWindow{Start: target.End}, rest, false, true
			default:
				return TimeWindow{Start: target.Start}, rest, false, true
			}
		}
	}

	for _, nw := range namedWindows {
		if loc := nw.pattern.FindStringIndex(text); loc != nil {
			return nw.window(now), cutSpan(text, loc[0], loc[1]), false, true
		}
	}
	if dm, ok := p.dates.Find(text, now); ok {
		return dayWindow(StartOfDay(dm.Time), 1), cutSpan(text, dm.Index, dm.End()), false, true
	}
	return TimeWindow{}, text, false, false
}

// anchoredWindow resolves the time phrase at the start of text to the span
// it names: a whole day or week for dates, a single instant for times of day.
// It also returns the length of the phrase.
func (p *Parser) anchoredWindow(text string, now time.Time) (TimeWindow, int, bool) {
	for _, nw := range namedWindows {
		if loc := nw.pattern.FindStringIndex(text); loc != nil && loc[0] == 0 {
			return nw.window(now), loc[1], true
		}
	}
	dm, ok := p.dates.Find(text, now)
	if !ok || dm.Index != 0 {
		return TimeWindow{}, 0, false
	}
	if dm.HasTime {
		t := dm.Time
		return TimeWindow{Start: &t, End: &t}, dm.End(), true
	}
	return dayWindow(StartOfDay(dm.Time), 1), dm.End(), true
}

// namedWindows are the fixed time phrases, tried in order.
var namedWindows = []struct {
	pattern *regexp.Regexp
	window  func(now time.Time) TimeWindow
}{
	{todayPattern, func(now time.Time) TimeWindow { return dayWindow(StartOfDay(now), 1) }},
	{tomorrowPattern, func(now time.Time) TimeWindow { return dayWindow(StartOfDay(now).AddDate(0, 0, 1), 1) }},
	{nextWeekPattern, func(now time.Time) TimeWindow { return dayWindow(StartOfWeek(now).AddDate(0, 0, 7), 7) }},
	{thisWeekPattern, func(now time.Time) TimeWindow { return dayWindow(StartOfWeek(now), 7) }},
	{monthPattern, func(now time.Time) TimeWindow {
		day := StartOfDay(now)
		start := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
		end := start.AddDate(0, 1, 0)
		return TimeWindow{Start: &start, End: &end}
	}},
}

func dayWindow(start time.Time, days int) TimeWindow {
	end := start.AddDate(0, 0, days)
	return TimeWindow{Start: &start, End: &end}
}

// queryKeyword keeps the residual tokens that could name a task.
func queryKeyword(text string) string {
	var words []string
	for _, tok := range Tokenize(text) {
		if len(tok) <= 2 || queryStopWords[tok] {
			continue
		}
		words = append(words, tok)
	}
	return strings.Join(words, " ")
}
