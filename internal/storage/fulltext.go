package storage

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"memnon/internal/domain"
)

// FullTextSearch runs the three-tier fallback protocol from spec.md §4.3:
//  1. IDF-weighted to_tsquery (weightedQuery, built by internal/idf and
//     already an OR expression of stemmed terms).
//  2. to_tsquery over the raw text's word tokens joined with "|", so any
//     one token can match (Postgres stems them and drops stopwords).
//  3. websearch_to_tsquery over the raw text.
//
// If every tier returns zero rows and the query is a single token, a
// substring ILIKE scan is tried as a last resort with a fixed low score
// (~0.05). The fallback lives here, so every caller of FullTextSearch
// gets it.
//
// Ranked scores are normalized by dividing each row's raw ts_rank by the
// maximum rank observed in the result set, so max text_score == 1.0
// whenever a ranked tier has a hit (spec.md §8 round-trip property);
// substring-fallback hits keep their fixed 0.05.
func (s *Store) FullTextSearch(ctx context.Context, rawText, weightedQuery string, filters domain.Filters, topK int) ([]domain.Candidate, error) {
	orTokens := strings.Join(strings.FieldsFunc(rawText, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}), " | ")
	tiers := []struct {
		name string
		expr string
		arg  string
	}{
		{"idf_weighted", "to_tsquery('english', $1)", weightedQuery},
		{"or_tokens", "to_tsquery('english', $1)", orTokens},
		{"websearch", "websearch_to_tsquery('english', $1)", rawText},
	}

	for _, tier := range tiers {
		if strings.TrimSpace(tier.arg) == "" {
			continue
		}
		candidates, err := s.rankedFullTextQuery(ctx, tier.expr, tier.arg, filters, topK)
		if err != nil {
			return nil, err
		}
		if len(candidates) > 0 {
			return normalizeTextScores(candidates), nil
		}
	}

	if isSingleToken(rawText) {
		candidates, err := s.substringFallback(ctx, rawText, filters, topK)
		if err != nil {
			return nil, err
		}
		return candidates, nil
	}

	return nil, nil
}

func (s *Store) rankedFullTextQuery(ctx context.Context, tsqueryExpr, arg string, filters domain.Filters, topK int) ([]domain.Candidate, error) {
	where, filterArgs := filterClause(filters, 2)
	args := []any{arg}
	args = append(args, filterArgs...)
	limitArg := len(args) + 1
	args = append(args, topK)

	sql := fmt.Sprintf(`
SELECT nc.id, nc.raw_text, cm.season, cm.episode, cm.scene, cm.world_layer,
       cm.perspective, cm.time_code, cm.location, cm.keywords, cm.characters,
       COALESCE(nv.world_time, ''),
       ts_rank(to_tsvector('english', nc.raw_text), %s) AS rank
FROM narrative_chunks nc
LEFT JOIN chunk_metadata cm ON cm.chunk_id = nc.id
LEFT JOIN narrative_view nv ON nv.id = nc.id
WHERE to_tsvector('english', nc.raw_text) @@ %s%s
ORDER BY rank DESC
LIMIT $%d`, tsqueryExpr, tsqueryExpr, where, limitArg)

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: fulltext search: %v", domain.ErrStorageError, err)
	}
	defer rows.Close()

	var out []domain.Candidate
	for rows.Next() {
		var (
			chunkID     int64
			rawText     string
			season      *int
			episode     *int
			scene       *int
			worldLayer  *string
			perspective *string
			timeCode    *string
			location    *string
			keywords    []string
			characters  []string
			worldTime   string
			rank        float64
		)
		if err := rows.Scan(&chunkID, &rawText, &season, &episode, &scene, &worldLayer,
			&perspective, &timeCode, &location, &keywords, &characters, &worldTime, &rank); err != nil {
			return nil, fmt.Errorf("%w: scan fulltext result: %v", domain.ErrStorageError, err)
		}
		out = append(out, domain.Candidate{
			ID:          fmt.Sprintf("%d", chunkID),
			ChunkID:     &chunkID,
			ContentType: domain.ContentTypeNarrative,
			Text:        rawText,
			Source:      domain.SourceTextSearch,
			TextScore:   ptr(rank),
			Score:       rank,
			Metadata:    metadataMap(season, episode, scene, worldLayer, perspective, timeCode, location, worldTime, keywords, characters),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate fulltext results: %v", domain.ErrStorageError, err)
	}
	return out, nil
}

func (s *Store) substringFallback(ctx context.Context, token string, filters domain.Filters, topK int) ([]domain.Candidate, error) {
	token = strings.TrimSpace(token)
	where, filterArgs := filterClause(filters, 2)
	args := []any{"%" + token + "%"}
	args = append(args, filterArgs...)
	limitArg := len(args) + 1
	args = append(args, topK)

	sql := fmt.Sprintf(`
SELECT nc.id, nc.raw_text, cm.season, cm.episode, cm.scene, cm.world_layer,
       cm.perspective, cm.time_code, cm.location, cm.keywords, cm.characters,
       COALESCE(nv.world_time, '')
FROM narrative_chunks nc
LEFT JOIN chunk_metadata cm ON cm.chunk_id = nc.id
LEFT JOIN narrative_view nv ON nv.id = nc.id
WHERE nc.raw_text ILIKE $1%s
LIMIT $%d`, where, limitArg)

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: substring fallback: %v", domain.ErrStorageError, err)
	}
	defer rows.Close()

	const fallbackScore = 0.05
	var out []domain.Candidate
	for rows.Next() {
		var (
			chunkID     int64
			rawText     string
			season      *int
			episode     *int
			scene       *int
			worldLayer  *string
			perspective *string
			timeCode    *string
			location    *string
			keywords    []string
			characters  []string
			worldTime   string
		)
		if err := rows.Scan(&chunkID, &rawText, &season, &episode, &scene, &worldLayer,
			&perspective, &timeCode, &location, &keywords, &characters, &worldTime); err != nil {
			return nil, fmt.Errorf("%w: scan substring result: %v", domain.ErrStorageError, err)
		}
		out = append(out, domain.Candidate{
			ID:          fmt.Sprintf("%d", chunkID),
			ChunkID:     &chunkID,
			ContentType: domain.ContentTypeNarrative,
			Text:        rawText,
			Source:      domain.SourceTextSearch,
			TextScore:   ptr(fallbackScore),
			Score:       fallbackScore,
			Metadata:    metadataMap(season, episode, scene, worldLayer, perspective, timeCode, location, worldTime, keywords, characters),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate substring results: %v", domain.ErrStorageError, err)
	}
	return out, nil
}

func normalizeTextScores(candidates []domain.Candidate) []domain.Candidate {
	max := 0.0
	for _, c := range candidates {
		if c.TextScore != nil && *c.TextScore > max {
			max = *c.TextScore
		}
	}
	if max == 0 {
		return candidates
	}
	for i := range candidates {
		if candidates[i].TextScore == nil {
			continue
		}
		normalized := *candidates[i].TextScore / max
		candidates[i].TextScore = &normalized
		candidates[i].Score = normalized
	}
	return candidates
}

func isSingleToken(text string) bool {
	return len(strings.Fields(strings.TrimSpace(text))) == 1
}
