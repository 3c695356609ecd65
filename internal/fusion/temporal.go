package fusion

import (
	"math"

	"memnon/internal/domain"
)

// TemporalPosition is chunk_id / total_chunks, clamped to [0,1]. The sole
// chronology signal in the corpus is chunk id order (spec.md §3).
func TemporalPosition(chunkID, totalChunks int64) float64 {
	if totalChunks <= 0 {
		return 0
	}
	pos := float64(chunkID) / float64(totalChunks)
	return clamp01(pos)
}

// EffectiveBoostFactor resolves the configured temporal_boost_factor
// against how strongly temporal the query is:
//   - |intent-0.5| < 0.05: non-temporal, reweighting skipped (factor 0).
//   - 0.05 <= |intent-0.5| < 0.1: weakly temporal, factor halved.
//   - |intent-0.5| >= 0.1: full configured factor.
//
// This resolves the spec's open question about the weakly-temporal
// window (DESIGN.md resolution #1): halve rather than skip.
func EffectiveBoostFactor(boostFactor, temporalIntent float64) float64 {
	strength := math.Abs(temporalIntent - 0.5)
	switch {
	case strength < 0.05:
		return 0
	case strength < 0.1:
		return boostFactor * 0.5
	default:
		return boostFactor
	}
}

// ApplyTemporalBoost blends a fused score with how well temporalPosition
// matches temporalIntent, per apply_continuous_temporal_boost: match =
// 1 - |intent - position|, sharpened to the 1.5 power when the query's
// intent is strong. The original scales intent_strength = |intent-0.5|*2
// and compares it to 0.5, which is equivalent to |intent-0.5| > 0.25 in
// this function's unscaled terms. originalScore and temporalPosition are
// preserved for diagnostics; boostFactor is expected to already be the
// effective (possibly halved or zeroed) factor from EffectiveBoostFactor.
func ApplyTemporalBoost(baseScore, temporalPosition, temporalIntent, boostFactor float64) (adjusted float64) {
	if boostFactor <= 0 {
		return clamp01(baseScore)
	}

	match := 1 - math.Abs(temporalIntent-temporalPosition)
	if math.Abs(temporalIntent-0.5) > 0.25 {
		match = math.Pow(match, 1.5)
	}

	adjusted = baseScore*(1-boostFactor) + match*boostFactor
	return clamp01(adjusted)
}

// ReweightCandidates applies the temporal boost to every candidate that
// carries a ChunkID, attaching original_score/temporal_position for
// diagnostics (spec.md §3). Candidates without a ChunkID (structured-data
// hits) pass through unchanged — chunk_id/total_chunks is the only
// chronology signal the corpus provides.
func ReweightCandidates(candidates []domain.Candidate, totalChunks int64, temporalIntent, boostFactor float64) []domain.Candidate {
	effective := EffectiveBoostFactor(boostFactor, temporalIntent)
	if effective <= 0 {
		return candidates
	}

	out := make([]domain.Candidate, len(candidates))
	for i, c := range candidates {
		if c.ChunkID == nil {
			out[i] = c
			continue
		}
		position := TemporalPosition(*c.ChunkID, totalChunks)
		original := c.Score
		c.Score = ApplyTemporalBoost(c.Score, position, temporalIntent, effective)
		c.OriginalScore = &original
		c.TemporalPosition = &position
		out[i] = c
	}
	return out
}
