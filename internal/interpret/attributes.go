package interpret

import (
	"regexp"
	"strings"
	"time"
)

// creationPrefixes introduce a new task ("add ...", "remind me to ...").
var creationPrefixes = regexp.MustCompile(`(?i)^(?:please\s+)?(?:add(?:\s+a)?(?:\s+new)?(?:\s+task)?|create(?:\s+a)?(?:\s+new)?(?:\s+task)?|new\s+task|remind\s+me\s+to|i\s+need\s+to|i\s+have\s+to|put)\b[\s:,-]*`)

// Parser interprets utterances. The zero value is not usable; use NewParser.
type Parser struct {
	dates DateParser
}

// NewParser returns a Parser using dates to find date expressions.
// A nil DateParser disables date extraction.
func NewParser(dates DateParser) *Parser {
	if dates == nil {
		dates = DateParserFunc(func(string, time.Time) (DateMatch, bool) { return DateMatch{}, false })
	}
	return &Parser{dates: dates}
}

var defaultParser = NewParser(NewNaturalDates())

// DefaultParser returns the shared Parser backed by NaturalDates.
func DefaultParser() *Parser {
	return defaultParser
}

// ParseTask interprets a creation utterance with the default parser.
func ParseTask(text string, now time.Time) TaskAttributes {
	return defaultParser.ParseTask(text, now)
}

// ParseQuery interprets a read utterance with the default parser.
func ParseQuery(text string, now time.Time) QueryFilter {
	return defaultParser.ParseQuery(text, now)
}

// ParseTask extracts due date, status, category and priority from text and
// returns what is left as the task name. It never returns an empty name
// when text contained anything besides command words.
func (p *Parser) ParseTask(text string, now time.Time) TaskAttributes {
	attrs := TaskAttributes{
		Status:   StatusToDo,
		Category: CategoryPersonal,
		Priority: PriorityNormal,
	}
	original := collapseSpaces(text)
	residual := original

	if m, ok := p.dates.Find(residual, now); ok {
		due := m.Time
		attrs.Due = &due
		residual = cutSpan(residual, datePrepositionStart(residual, m.Index), m.End())
	}

	if hit, ok := findKeyword(statusKeywords, residual); ok {
		attrs.Status = hit.value
	}
	if hit, ok := findKeyword(priorityKeywords, residual); ok {
		attrs.Priority = hit.value
		if hit.strip {
			residual = cutSpan(residual, hit.start, hit.end)
		}
	}
	if hit, ok := findKeyword(categoryKeywords, residual); ok {
		attrs.Category = hit.value
		if hit.strip {
			residual = cutSpan(residual, hit.start, hit.end)
		}
	}

	stripped := stripCreationPrefix(residual)
	attrs.TaskName = strings.Trim(stripped, " ,.;:-")
	if stripped != residual {
		// A creation verb was present, so a leading "finish" or "complete"
		// belongs to the task itself rather than to an update command.
		attrs.CleanedName = strings.Join(removeStopWords(Tokenize(attrs.TaskName)), " ")
	} else {
		attrs.CleanedName = CleanTaskName(attrs.TaskName)
	}

	if attrs.CleanedName == "" {
		attrs.CleanedName = StripCommand(original)
		if attrs.CleanedName == "" {
			attrs.CleanedName = strings.ToLower(original)
		}
	}
	if attrs.TaskName == "" {
		attrs.TaskName = original
	}
	return attrs
}

// datePrepositions introduce a date span ("at 5pm", "due by friday").
var datePrepositions = regexp.MustCompile(`(?i)(?:^|\s)(?:at|on|by|due|for|before)\s+$`)

// datePrepositionStart moves a date span start back over the prepositions
// directly preceding it.
func datePrepositionStart(text string, start int) int {
	for {
		loc := datePrepositions.FindStringIndex(text[:start])
		if loc == nil {
			return start
		}
		if text[loc[0]] == ' ' || text[loc[0]] == '\t' {
			loc[0]++
		}
		start = loc[0]
	}
}

func stripCreationPrefix(s string) string {
	for {
		loc := creationPrefixes.FindStringIndex(s)
		if loc == nil || loc[1] == 0 {
			return s
		}
		s = collapseSpaces(s[loc[1]:])
	}
}
