// Package fusion blends per-source candidate scores into the final
// aggregated score and applies the optional temporal-position boost.
package fusion

import (
	"memnon/internal/config"
	"memnon/internal/domain"
)

// WeightsForQueryType resolves the (vector, text) weight pair for a query
// type, applying the configured per-type override if enabled, falling
// back to the hybrid search defaults otherwise.
func WeightsForQueryType(cfg config.HybridSearchConfig, queryType domain.QueryType) (vector, text float64) {
	vector, text = cfg.VectorWeightDefault, cfg.TextWeightDefault
	if cfg.UseQueryTypeWeights {
		if pair, ok := cfg.WeightsByQueryType[string(queryType)]; ok {
			vector, text = pair.Vector, pair.Text
		}
	}
	return vector, text
}

// AdjustForRareTerms lifts text_weight to at least
// cfg.RareTermMinTextWeight (recomputing vector_weight = 1 - text_weight)
// when queryText contains any term whose IDF exceeds
// cfg.RareTermIDFThreshold, unless queryType is in the excluded set. This
// is pinned exactly by the original's rare-term weight tests: a rare term
// never lowers an already-higher text_weight.
func AdjustForRareTerms(cfg config.HybridSearchConfig, dict RareTermSource, queryText string, vectorWeight, textWeight float64, queryType domain.QueryType) (float64, float64) {
	for _, excluded := range cfg.RareTermExcludedQueryTypes {
		if excluded == string(queryType) {
			return vectorWeight, textWeight
		}
	}

	rareTerms := dict.HighIDFTerms(queryText, cfg.RareTermIDFThreshold)
	if len(rareTerms) == 0 {
		return vectorWeight, textWeight
	}

	if textWeight >= cfg.RareTermMinTextWeight {
		return vectorWeight, textWeight
	}
	textWeight = cfg.RareTermMinTextWeight
	vectorWeight = 1 - textWeight
	return vectorWeight, textWeight
}

// RareTermSource is the subset of internal/idf.Dictionary's interface
// fusion needs, kept narrow so fusion doesn't import the whole IDF build
// pipeline.
type RareTermSource interface {
	HighIDFTerms(text string, threshold float64) []string
}

// Fuse computes fused_score = vector_weight*vector_score + text_weight*
// text_score for every candidate, defaulting a missing sub-score to 0,
// then applies the configured per-source multiplicative weight (spec.md
// §9 open question, resolved: applied after fusion, before temporal
// reweighting).
func Fuse(candidates []domain.Candidate, vectorWeight, textWeight float64, sourceWeights map[string]float64) []domain.Candidate {
	out := make([]domain.Candidate, len(candidates))
	for i, c := range candidates {
		v := scoreOrZero(c.VectorScore)
		t := scoreOrZero(c.TextScore)
		fused := vectorWeight*v + textWeight*t

		if w, ok := sourceWeights[string(c.Source)]; ok {
			fused *= w
		}

		c.Score = clamp01(fused)
		out[i] = c
	}
	return out
}

func scoreOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
