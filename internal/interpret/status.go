package interpret

import (
	"regexp"
	"strings"
)

// StatusEvidence names the rule that decided a target status.
type StatusEvidence string

const (
	EvidenceSlot       StatusEvidence = "slot"
	EvidenceToPhrase   StatusEvidence = "to_phrase"
	EvidenceMovePhrase StatusEvidence = "move_phrase"
	EvidenceCommand    StatusEvidence = "command_keyword"
	EvidenceCompletion StatusEvidence = "completion_phrase"
	EvidenceCycle      StatusEvidence = "cycle"
)

const statusAlternatives = `(to[\s-]*do|in[\s-]+progress|in[\s-]+process|done|complete(?:d)?|finished)`

var (
	// "to in progress", "to done", "to to do"
	toStatusPattern = regexp.MustCompile(`(?i)\bto\s+` + statusAlternatives + `\b`)

	// "move report to do", "set report to progress"
	moveStatusPattern = regexp.MustCompile(`(?i)\b(?:set|move|change|put|switch)\b.*?\bto\s+` +
		`(to[\s-]*do|do|in[\s-]+progress|progress|in[\s-]+process|done|complete(?:d)?|finished)\b`)

	commandVerbPattern = regexp.MustCompile(`(?i)\b(?:set|move|change|put|switch|mark)\b`)

	completionPattern = regexp.MustCompile(`(?i)\bas\s+(?:done|complete(?:d)?|finished)\b|\bmark\b.*\b(?:done|complete(?:d)?|finished)\b`)
)

// ResolveTargetStatus decides which status an update utterance asks for.
// explicitSlot is the status slot captured by the voice platform; an empty
// string means none was captured.
func ResolveTargetStatus(text, explicitSlot string, current Status) Status {
	s, _ := ExplainTargetStatus(text, explicitSlot, current)
	return s
}

// ExplainTargetStatus is ResolveTargetStatus that also reports which rule
// produced the answer. Rules are tried in order and the first one that
// recognizes a status wins; the cycle from current is the last resort.
func ExplainTargetStatus(text, explicitSlot string, current Status) (Status, StatusEvidence) {
	if s, ok := NormalizeStatus(explicitSlot); ok {
		return s, EvidenceSlot
	}
	if m := toStatusPattern.FindStringSubmatch(text); m != nil {
		if s, ok := statusWord(m[1]); ok {
			return s, EvidenceToPhrase
		}
	}
	if m := moveStatusPattern.FindStringSubmatch(text); m != nil {
		if s, ok := statusWord(m[1]); ok {
			return s, EvidenceMovePhrase
		}
	}
	if commandVerbPattern.MatchString(text) {
		if hit, ok := findLastKeyword(statusKeywords, text); ok {
			return hit.value, EvidenceCommand
		}
	}
	if completionPattern.MatchString(text) {
		return StatusDone, EvidenceCompletion
	}
	return current.Next(), EvidenceCycle
}

// statusWord maps the status alternatives captured above, including the
// bare "do" and "progress" left behind when "to" doubles as the preposition.
func statusWord(w string) (Status, bool) {
	switch strings.Join(strings.Fields(strings.ToLower(strings.ReplaceAll(w, "-", " "))), " ") {
	case "do":
		return StatusToDo, true
	case "progress":
		return StatusInProcess, true
	}
	return NormalizeStatus(w)
}
