package interpret

import "strings"

// maxFuzzyDistance bounds the edit distance accepted by the fuzzy tier.
const maxFuzzyDistance = 2

type tier struct {
	name  MatchTier
	match func(search, candidate Phrase, rawSearch, rawName string) bool
}

// tiers is the resolver cascade in precedence order.
var tiers = []tier{
	{TierExact, func(_, _ Phrase, s, n string) bool { return s == n }},
	{TierStemmed, func(s, c Phrase, _, _ string) bool { return equalTokens(s.Stems, c.Stems) }},
	{TierBagOfWord, func(s, c Phrase, _, _ string) bool { return bagOfWords(s, c) }},
	{TierPartial, func(s, c Phrase, _, _ string) bool { return partialContainment(s, c) }},
	{TierFuzzy, func(s, c Phrase, _, _ string) bool { return boundedFuzzy(s, c) }},
	{TierSubstring, func(_, _ Phrase, s, n string) bool {
		return n != "" && (strings.Contains(n, s) || strings.Contains(s, n))
	}},
}

// Resolve picks at most one task from candidates for the spoken phrase.
//
// Tiers are tried in order: exact, stemmed exact, bag of words, partial
// containment, bounded edit distance, raw substring. Within a tier the first
// candidate in caller order wins, even when a later candidate would fit
// better. The returned task is a copy; candidates is never modified.
func Resolve(phrase string, candidates []CandidateTask) MatchResult {
	raw := strings.ToLower(strings.TrimSpace(phrase))
	if raw == "" || len(candidates) == 0 {
		return MatchResult{}
	}
	search := NewPhrase(raw)

	names := make([]string, len(candidates))
	phrases := make([]Phrase, len(candidates))
	for i, c := range candidates {
		names[i] = strings.ToLower(strings.TrimSpace(c.Name))
		phrases[i] = NewPhrase(c.Name)
	}

	for _, t := range tiers {
		for i := range candidates {
			if t.match(search, phrases[i], raw, names[i]) {
				task := candidates[i]
				return MatchResult{Task: &task, Tier: t.name}
			}
		}
	}
	return MatchResult{}
}

func equalTokens(a, b []string) bool {
	if len(a) == 0 || len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// bagOfWords holds when every search stem equals some candidate stem.
func bagOfWords(search, candidate Phrase) bool {
	return everyStem(search, candidate, func(s, c string) bool { return s == c })
}

// partialContainment holds when every search stem is a substring or a
// superstring of some candidate stem.
func partialContainment(search, candidate Phrase) bool {
	return everyStem(search, candidate, func(s, c string) bool {
		return strings.Contains(c, s) || strings.Contains(s, c)
	})
}

// boundedFuzzy holds when every search stem is within maxFuzzyDistance
// edits of some candidate stem.
func boundedFuzzy(search, candidate Phrase) bool {
	return everyStem(search, candidate, func(s, c string) bool {
		return Levenshtein(s, c) <= maxFuzzyDistance
	})
}

func everyStem(search, candidate Phrase, fits func(s, c string) bool) bool {
	if search.Empty() || candidate.Empty() {
		return false
	}
	for _, s := range search.Stems {
		found := false
		for _, c := range candidate.Stems {
			if fits(s, c) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Levenshtein returns the edit distance between a and b, counted in runes.
func Levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}
