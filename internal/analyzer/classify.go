// Package analyzer implements the Query Analyzer: type classification,
// continuous temporal-intent scoring, and entity/alias extraction, all
// without calling a model.
package analyzer

import (
	"regexp"

	"memnon/internal/domain"
)

// defaultPatterns mirror query_analysis.py's QueryAnalyzer vocabulary,
// corrected to first-match-wins (the original loops through every query
// type and lets the last match win; spec.md's evaluation order is the
// fix). Callers override any subset via AnalyzerConfig.TypePatterns.
var defaultPatterns = map[domain.QueryType][]string{
	domain.QueryTypeCharacter: {
		`\bwho is\b`, `\bcharacter\b`, `\bperson\b`,
	},
	domain.QueryTypeLocation: {
		`\bwhere\b`, `\blocation\b`, `\bplace\b`, `\bcity\b`, `\bdistrict\b`, `\barea\b`,
	},
	domain.QueryTypeEvent: {
		`\bwhat happened\b`, `\bevent\b`, `\boccurred\b`, `\btook place\b`, `\bwhen did\b`,
	},
	domain.QueryTypeRelationship: {
		`\brelationship\b`, `\bfeel about\b`, `\bthink about\b`, `\bfeel towards\b`, `\bthink of\b`,
	},
	domain.QueryTypeTheme: {
		`\btheme\b`, `\bmotif\b`, `\bsymbolism\b`, `\bmeaning\b`,
	},
}

// Classifier compiles the type patterns once and classifies queries in
// the fixed order domain.OrderedQueryTypes names.
type Classifier struct {
	patterns map[domain.QueryType][]*regexp.Regexp
}

// NewClassifier builds a Classifier, overlaying any caller-supplied
// patterns (keyed by query type name) over the defaults.
func NewClassifier(overrides map[string][]string) *Classifier {
	raw := make(map[domain.QueryType][]string, len(defaultPatterns))
	for t, pats := range defaultPatterns {
		raw[t] = pats
	}
	for name, pats := range overrides {
		raw[domain.QueryType(name)] = pats
	}

	compiled := make(map[domain.QueryType][]*regexp.Regexp, len(raw))
	for t, pats := range raw {
		for _, p := range pats {
			compiled[t] = append(compiled[t], regexp.MustCompile(`(?i)`+p))
		}
	}
	return &Classifier{patterns: compiled}
}

// Classify returns the first query type (in domain.OrderedQueryTypes
// order) whose patterns match text, or QueryTypeGeneral if none do.
func (c *Classifier) Classify(text string) domain.QueryType {
	for _, t := range domain.OrderedQueryTypes {
		for _, re := range c.patterns[t] {
			if re.MatchString(text) {
				return t
			}
		}
	}
	return domain.QueryTypeGeneral
}
