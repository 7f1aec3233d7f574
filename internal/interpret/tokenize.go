package interpret

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// stemSuffixes are tried longest first; at most one is removed.
var stemSuffixes = []string{"ing", "ed", "s"}

// minStemLen is the shortest stem a suffix may be stripped down to.
const minStemLen = 3

// Tokenize lowercases text and splits it into word tokens. Apostrophes
// inside words are dropped ("what's" -> "whats").
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\'' && r != '’'
	})
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.NewReplacer("'", "", "’", "").Replace(f)
		if f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// Stem strips a single trailing "ing", "ed" or "s" from token.
func Stem(token string) string {
	for _, suffix := range stemSuffixes {
		if !strings.HasSuffix(token, suffix) {
			continue
		}
		base := token[:len(token)-len(suffix)]
		if utf8.RuneCountInString(base) < minStemLen {
			return token
		}
		return base
	}
	return token
}

// Phrase is a tokenized, stemmed view of a piece of text.
type Phrase struct {
	Text   string
	Tokens []string
	Stems  []string
}

// NewPhrase tokenizes and stems text.
func NewPhrase(text string) Phrase {
	tokens := Tokenize(text)
	stems := make([]string, len(tokens))
	for i, t := range tokens {
		stems[i] = Stem(t)
	}
	return Phrase{
		Text:   strings.Join(tokens, " "),
		Tokens: tokens,
		Stems:  stems,
	}
}

// Empty reports whether the phrase has no tokens.
func (p Phrase) Empty() bool {
	return len(p.Tokens) == 0
}
