package idf

import (
	"regexp"
	"strings"

	"github.com/blevesearch/snowballstem"
	"github.com/blevesearch/snowballstem/english"
)

var tokenPattern = regexp.MustCompile(`[a-zA-Z0-9']+`)

// stopwords is the fixed set excluded from emitted weighted queries. It is
// not applied at build time — the dictionary still carries IDF weights for
// these tokens, matching the original's "stopwords are excluded from
// emitted queries but may remain in the dictionary."
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"but": {}, "by": {}, "for": {}, "if": {}, "in": {}, "into": {}, "is": {},
	"it": {}, "no": {}, "not": {}, "of": {}, "on": {}, "or": {}, "such": {},
	"that": {}, "the": {}, "their": {}, "then": {}, "there": {}, "these": {},
	"they": {}, "this": {}, "to": {}, "was": {}, "will": {}, "with": {},
	"what": {}, "who": {}, "how": {}, "did": {}, "does": {}, "do": {},
}

// stem applies the Snowball English stemmer, matching the Python
// original's use of snowballstemmer.stemmer("english") for consistency
// between build-time and lookup-time tokenization.
func stem(word string) string {
	env := snowballstem.NewEnv(word)
	english.Stem(env)
	return env.Current()
}

// tokenize lowercases, extracts word tokens, and stems them. It does not
// remove stopwords; callers that need stopword-filtered output use
// tokenizeForQuery.
func tokenize(text string) []string {
	matches := tokenPattern.FindAllString(strings.ToLower(text), -1)
	tokens := make([]string, 0, len(matches))
	for _, m := range matches {
		m = strings.TrimSuffix(m, "'s")
		if m == "" {
			continue
		}
		tokens = append(tokens, stem(m))
	}
	return tokens
}

// tokenizeForQuery tokenizes and additionally filters stopwords, for use
// wherever a token list is about to be emitted into a full-text query.
// Stopwords are matched before stemming, so a stopword whose stem differs
// from it (e.g. "does") is still dropped.
func tokenizeForQuery(text string) []string {
	matches := tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		m = strings.TrimSuffix(m, "'s")
		if m == "" || isStopword(m) {
			continue
		}
		out = append(out, stem(m))
	}
	return out
}

func isStopword(term string) bool {
	_, ok := stopwords[term]
	return ok
}

// Keywords tokenizes, stems, and stopword-filters text — the QueryAnalysis
// "keywords" field (spec.md §3) uses the same tokenization as the IDF
// dictionary so the two stay consistent.
func Keywords(text string) []string {
	return tokenizeForQuery(text)
}
