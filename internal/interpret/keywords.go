package interpret

import (
	"regexp"
	"strings"
)

// keyword is a compiled phrase matched on word boundaries. Phrases marked
// strip are attribute markers ("high priority") that are removed from the
// task name once recognized; the rest may be part of the name itself.
type keyword struct {
	phrase  string
	pattern *regexp.Regexp
	strip   bool
}

type keywordGroup[T comparable] struct {
	value    T
	keywords []keyword
}

// keywordHit is the earliest keyword found in a text.
type keywordHit[T comparable] struct {
	value T
	start int
	end   int
	strip bool
}

// compileKeyword builds a case-insensitive, word-bounded pattern. Words in a
// phrase may be separated by any run of spaces or hyphens.
func compileKeyword(phrase string, strip bool) keyword {
	words := strings.Fields(phrase)
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	pattern := `(?i)\b` + strings.Join(words, `[\s-]+`) + `\b`
	return keyword{
		phrase:  phrase,
		pattern: regexp.MustCompile(pattern),
		strip:   strip,
	}
}

func phrases(strip bool, list ...string) []keyword {
	out := make([]keyword, len(list))
	for i, p := range list {
		out[i] = compileKeyword(p, strip)
	}
	return out
}

func group[T comparable](value T, kws ...[]keyword) keywordGroup[T] {
	var all []keyword
	for _, k := range kws {
		all = append(all, k...)
	}
	return keywordGroup[T]{value: value, keywords: all}
}

// findKeyword returns the keyword occurring first in text. Ties on position
// go to the longer phrase.
func findKeyword[T comparable](groups []keywordGroup[T], text string) (keywordHit[T], bool) {
	var best keywordHit[T]
	found := false
	for _, g := range groups {
		for _, k := range g.keywords {
			loc := k.pattern.FindStringIndex(text)
			if loc == nil {
				continue
			}
			if !found || loc[0] < best.start || (loc[0] == best.start && loc[1] > best.end) {
				best = keywordHit[T]{value: g.value, start: loc[0], end: loc[1], strip: k.strip}
				found = true
			}
		}
	}
	return best, found
}

// findLastKeyword returns the keyword occurring last in text.
func findLastKeyword[T comparable](groups []keywordGroup[T], text string) (keywordHit[T], bool) {
	var best keywordHit[T]
	found := false
	for _, g := range groups {
		for _, k := range g.keywords {
			locs := k.pattern.FindAllStringIndex(text, -1)
			if len(locs) == 0 {
				continue
			}
			loc := locs[len(locs)-1]
			if !found || loc[0] > best.start || (loc[0] == best.start && loc[1] > best.end) {
				best = keywordHit[T]{value: g.value, start: loc[0], end: loc[1], strip: k.strip}
				found = true
			}
		}
	}
	return best, found
}

var statusKeywords = []keywordGroup[Status]{
	group(StatusDone, phrases(false, "done", "complete", "completed", "finished")),
	group(StatusInProcess, phrases(false, "in progress", "in process", "working on", "doing", "started")),
	group(StatusToDo, phrases(false, "to do", "todo", "pending")),
}

var priorityKeywords = []keywordGroup[Priority]{
	group(PriorityLow,
		phrases(true, "low priority", "priority low", "not urgent", "no rush")),
	group(PriorityHigh,
		phrases(true, "high priority", "priority high", "top priority", "urgent", "asap"),
		phrases(false, "important", "critical")),
	group(PriorityNormal,
		phrases(true, "normal priority", "medium priority", "priority normal", "priority medium")),
}

var categoryKeywords = []keywordGroup[Category]{
	group(CategoryWork,
		phrases(true, "for work", "at work", "work task", "work category", "category work"),
		phrases(false, "work", "office", "job", "client")),
	group(CategoryPersonal,
		phrases(true, "personal task", "personal category", "category personal", "for myself"),
		phrases(false, "personal", "home", "errand", "errands", "family")),
}

// openKeywords are query words meaning "anything not done yet".
var openKeywords = phrases(false, "not done", "unfinished", "incomplete", "outstanding", "remaining", "open")

func matchAny(kws []keyword, text string) ([]int, bool) {
	var best []int
	for _, k := range kws {
		loc := k.pattern.FindStringIndex(text)
		if loc == nil {
			continue
		}
		if best == nil || loc[0] < best[0] || (loc[0] == best[0] && loc[1] > best[1]) {
			best = loc
		}
	}
	return best, best != nil
}

// cutSpan removes text[start:end] and collapses the surrounding whitespace.
func cutSpan(text string, start, end int) string {
	if start < 0 || end > len(text) || start >= end {
		return collapseSpaces(text)
	}
	return collapseSpaces(text[:start] + " " + text[end:])
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
