package idf

import "sort"

const (
	// rareNarrowingThreshold is the IDF above which generate_weighted_query
	// switches to aggressive narrowing (spec.md §4.2).
	rareNarrowingThreshold = 3.0
	// rareKeepThreshold and highValueThreshold are the IDF cutoffs for the
	// "very rare" and "high value" tiers respectively.
	rareKeepThreshold  = 2.0
	highValueThreshold = 1.5
	rareKeepLimit      = 5
)

type scoredTerm struct {
	term string
	idf  float64
}

// WeightedQuery tokenizes, stems, and stopword-filters text, then builds a
// full-text query expression joining the selected terms with " | " (an OR
// consumable by to_tsquery). Up to maxTerms terms are kept, favoring terms
// with IDF >= 1.5; if any candidate term's IDF exceeds 3.0 the selection
// narrows aggressively to only the top rareKeepLimit terms with IDF >= 2.0.
func (d *Dictionary) WeightedQuery(text string, maxTerms int) string {
	if maxTerms <= 0 {
		maxTerms = d.maxTerms
	}

	terms := d.scoreUniqueTerms(tokenizeForQuery(text))
	if len(terms) == 0 {
		return ""
	}

	var selected []scoredTerm
	hasRare := false
	for _, t := range terms {
		if t.idf > rareNarrowingThreshold {
			hasRare = true
			break
		}
	}

	if hasRare {
		for _, t := range terms {
			if t.idf >= rareKeepThreshold {
				selected = append(selected, t)
			}
			if len(selected) >= rareKeepLimit {
				break
			}
		}
	} else {
		var highValue, fallback []scoredTerm
		for _, t := range terms {
			if t.idf >= highValueThreshold {
				highValue = append(highValue, t)
			} else {
				fallback = append(fallback, t)
			}
		}
		selected = append(selected, highValue...)
		selected = append(selected, fallback...)
		if len(selected) > maxTerms {
			selected = selected[:maxTerms]
		}
	}

	out := make([]string, 0, len(selected))
	for _, t := range selected {
		out = append(out, t.term)
	}
	return joinOR(out)
}

// HighIDFTerms extracts normalized, deduplicated terms from text whose IDF
// meets or exceeds threshold, sorted by IDF descending. Used by the fusion
// stage's rare-term weight-adjustment heuristic; get_high_idf_terms uses an
// inclusive >= threshold comparison, so a term landing exactly at
// rare_term_idf_threshold still counts as rare.
func (d *Dictionary) HighIDFTerms(text string, threshold float64) []string {
	terms := d.scoreUniqueTerms(tokenizeForQuery(text))
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if t.idf >= threshold {
			out = append(out, t.term)
		}
	}
	return out
}

// scoreUniqueTerms dedupes tok, scores each by IDF, and sorts descending by
// IDF (ties broken lexically for determinism).
func (d *Dictionary) scoreUniqueTerms(tokens []string) []scoredTerm {
	seen := make(map[string]struct{}, len(tokens))
	var terms []scoredTerm
	d.mu.RLock()
	for _, tok := range tokens {
		if isStopword(tok) {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		terms = append(terms, scoredTerm{term: tok, idf: d.idfLocked(tok)})
	}
	d.mu.RUnlock()

	sort.Slice(terms, func(i, j int) bool {
		if terms[i].idf != terms[j].idf {
			return terms[i].idf > terms[j].idf
		}
		return terms[i].term < terms[j].term
	})
	return terms
}

func joinOR(terms []string) string {
	out := ""
	for i, t := range terms {
		if i > 0 {
			out += " | "
		}
		out += t
	}
	return out
}
