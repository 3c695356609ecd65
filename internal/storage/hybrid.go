package storage

import (
	"context"
	"fmt"

	"memnon/internal/domain"
)

// MergeHybrid combines the independently-fetched vector and text candidate
// sets for one query into the shape db_access.py's
// execute_multi_model_hybrid_search produces: every candidate keeps
// whatever vector_score the vector generator already computed (the
// per-model weighted mean) and gains a text_score — taken from the
// matching full-text hit, or, for a vector-only hit, recomputed by issuing
// a rank query against that specific chunk so fusion never silently treats
// a real text match as zero (spec.md §4.3 hybrid_search_multi_model).
func (s *Store) MergeHybrid(ctx context.Context, vectorCands, textCands []domain.Candidate, weightedQuery, rawText string) []domain.Candidate {
	textByID := make(map[string]*domain.Candidate, len(textCands))
	for i := range textCands {
		textByID[textCands[i].ID] = &textCands[i]
	}

	out := make([]domain.Candidate, 0, len(vectorCands)+len(textCands))
	seen := make(map[string]bool, len(vectorCands))

	for _, c := range vectorCands {
		seen[c.ID] = true
		if tc, ok := textByID[c.ID]; ok {
			c.TextScore = tc.TextScore
		} else if c.ChunkID != nil {
			if recomputed, err := s.textScoreForChunk(ctx, *c.ChunkID, weightedQuery, rawText); err == nil {
				c.TextScore = ptr(recomputed)
			}
		}
		out = append(out, c)
	}

	for _, c := range textCands {
		if seen[c.ID] {
			continue
		}
		out = append(out, c)
	}

	return out
}

// textScoreForChunk computes the raw ts_rank of a single chunk (not
// normalized against the full-text result set's maximum), used when a
// vector-only hit has no entry in the full-text result set.
func (s *Store) textScoreForChunk(ctx context.Context, chunkID int64, weightedQuery, rawText string) (float64, error) {
	expr := "plainto_tsquery('english', $2)"
	arg := rawText
	if weightedQuery != "" {
		expr = "to_tsquery('english', $2)"
		arg = weightedQuery
	}

	sql := fmt.Sprintf(`SELECT ts_rank(to_tsvector('english', raw_text), %s) FROM narrative_chunks WHERE id = $1`, expr)
	var rank float64
	err := s.pool.QueryRow(ctx, sql, chunkID, arg).Scan(&rank)
	return rank, err
}
