package rerank

import (
	"context"
	"sort"

	"github.com/rs/zerolog/log"

	"memnon/internal/config"
	"memnon/internal/domain"
)

// Reranker re-scores fused candidates with a pair-scoring model and
// blends the result back with the fused score (spec.md §4.7).
type Reranker struct {
	scorer PairScorer
	cfg    config.CrossEncoderRerankingConfig
}

// New builds a Reranker. A nil scorer is valid — Rerank becomes a no-op
// pass-through, used when the feature is disabled or the model failed to
// load at startup.
func New(scorer PairScorer, cfg config.CrossEncoderRerankingConfig) *Reranker {
	return &Reranker{scorer: scorer, cfg: cfg}
}

// Rerank scores every candidate against query, blends
// final = alpha*fused + (1-alpha)*reranker_score, sorts descending, and
// truncates to cfg.TopK. On any failure it logs and returns the input
// candidates unchanged, truncated to topK — rerank failure is never fatal
// to a query_memory call (spec.md §4.7, §7).
func (r *Reranker) Rerank(ctx context.Context, query string, candidates []domain.Candidate, queryType domain.QueryType) []domain.Candidate {
	if !r.cfg.Enabled || r.scorer == nil || len(candidates) == 0 {
		return truncate(candidates, r.cfg.TopK)
	}

	alpha := r.cfg.BlendWeight
	if r.cfg.UseQueryTypeWeights {
		if override, ok := r.cfg.WeightsByQueryType[string(queryType)]; ok {
			alpha = override
		}
	}

	overlapWords := r.cfg.WindowOverlap / 10
	if overlapWords <= 0 {
		overlapWords = 1
	}

	out := make([]domain.Candidate, len(candidates))
	for i, c := range candidates {
		var rerankerScore float64
		var err error
		if r.cfg.UseSlidingWindow {
			rerankerScore, err = scorePairWithSlidingWindow(ctx, r.scorer, query, c.Text, r.cfg.WindowSize, overlapWords)
		} else {
			var raw float64
			raw, err = r.scorer.ScorePair(ctx, query, c.Text)
			rerankerScore = normalizeScore(raw)
		}

		if err != nil {
			log.Warn().Err(err).Str("candidate_id", c.ID).Msg("rerank: scoring failed, passing fused results through unchanged")
			return truncate(candidates, r.cfg.TopK)
		}

		original := c.Score
		normalizedOriginal := clamp01(original)
		blended := alpha*normalizedOriginal + (1-alpha)*rerankerScore

		c.OriginalScore = &original
		c.RerankerScore = &rerankerScore
		c.Score = blended
		out[i] = c
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return truncate(out, r.cfg.TopK)
}

func truncate(candidates []domain.Candidate, topK int) []domain.Candidate {
	if topK <= 0 || topK >= len(candidates) {
		return candidates
	}
	return candidates[:topK]
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
