package candidates

import (
	"context"

	"memnon/internal/domain"
)

// WeightedQueryBuilder is the subset of internal/idf.Dictionary the text
// generator needs.
type WeightedQueryBuilder interface {
	WeightedQuery(text string, maxTerms int) string
}

// TextStore is the subset of internal/storage.Store the text generator
// needs.
type TextStore interface {
	FullTextSearch(ctx context.Context, rawText, weightedQuery string, filters domain.Filters, topK int) ([]domain.Candidate, error)
}

// TextGenerator builds the IDF-weighted query and runs the three-tier
// full-text fallback protocol (spec.md §4.5).
type TextGenerator struct {
	dict  WeightedQueryBuilder
	store TextStore
}

// NewTextGenerator builds a TextGenerator.
func NewTextGenerator(dict WeightedQueryBuilder, store TextStore) *TextGenerator {
	return &TextGenerator{dict: dict, store: store}
}

// Generate runs the full-text candidate pass. Normalization (dividing
// each row's rank by the maximum observed) happens inside FullTextSearch.
func (g *TextGenerator) Generate(ctx context.Context, text string, maxTerms int, filters domain.Filters, topK int) ([]domain.Candidate, error) {
	weighted := g.dict.WeightedQuery(text, maxTerms)
	return g.store.FullTextSearch(ctx, text, weighted, filters, topK)
}
