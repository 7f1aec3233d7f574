package interpret

import "strings"

// commandPrefixes are verbs that wrap a task reference at the start of an
// update utterance ("mark ... as done").
var commandPrefixes = [][]string{
	{"mark"},
	{"set"},
	{"update"},
	{"change"},
	{"complete"},
	{"finish"},
}

// completionSuffixes close an update utterance. Longer phrases come first.
var completionSuffixes = [][]string{
	{"as", "completed"},
	{"as", "complete"},
	{"as", "finished"},
	{"as", "done"},
	{"to", "done"},
	{"completed"},
	{"complete"},
	{"done"},
}

var stopWords = map[string]bool{
	"the":  true,
	"my":   true,
	"a":    true,
	"an":   true,
	"some": true,
	"to":   true,
}

// CleanTaskName reduces an utterance to the words that identify a task.
// Command verbs at the start, completion phrases at the end and stop words
// are removed; everything else keeps its order. The result is a fixpoint,
// so CleanTaskName(CleanTaskName(x)) == CleanTaskName(x).
func CleanTaskName(raw string) string {
	tokens := Tokenize(raw)
	for {
		next := removeStopWords(stripCommandTokens(tokens))
		if len(next) == len(tokens) {
			return strings.Join(next, " ")
		}
		tokens = next
	}
}

// StripCommand removes only the command prefixes and completion suffixes.
func StripCommand(raw string) string {
	return strings.Join(stripCommandTokens(Tokenize(raw)), " ")
}

func stripCommandTokens(tokens []string) []string {
	for {
		n := len(tokens)
		tokens = trimPrefixTokens(tokens, commandPrefixes)
		tokens = trimSuffixTokens(tokens, completionSuffixes)
		if len(tokens) == n {
			return tokens
		}
	}
}

func trimPrefixTokens(tokens []string, patterns [][]string) []string {
	for _, p := range patterns {
		if hasTokenPrefix(tokens, p) {
			return tokens[len(p):]
		}
	}
	return tokens
}

func trimSuffixTokens(tokens []string, patterns [][]string) []string {
	for _, p := range patterns {
		if len(p) > len(tokens) {
			continue
		}
		if hasTokenPrefix(tokens[len(tokens)-len(p):], p) {
			return tokens[:len(tokens)-len(p)]
		}
	}
	return tokens
}

func hasTokenPrefix(tokens, prefix []string) bool {
	if len(prefix) > len(tokens) {
		return false
	}
	for i, p := range prefix {
		if tokens[i] != p {
			return false
		}
	}
	return true
}

func removeStopWords(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if !stopWords[t] {
			out = append(out, t)
		}
	}
	return out
}
