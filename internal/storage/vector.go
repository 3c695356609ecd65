package storage

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"memnon/internal/domain"
)

// VectorSearch issues a cosine-similarity ranked query against the
// per-dimension table matching len(queryEmbedding), restricted to
// modelKey, joined with chunk_metadata and narrative_view. Similarity is
// reported as 1 - cosine_distance, per spec.md §4.3.
func (s *Store) VectorSearch(ctx context.Context, queryEmbedding []float32, modelKey string, filters domain.Filters, topK int) ([]domain.Candidate, error) {
	table, err := s.dimensionTable(len(queryEmbedding))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageError, err)
	}

	where, filterArgs := filterClause(filters, 3)
	args := []any{pgvector.NewVector(queryEmbedding), modelKey}
	args = append(args, filterArgs...)
	limitArg := len(args) + 1
	args = append(args, topK)

	sql := fmt.Sprintf(`
SELECT nc.id, nc.raw_text, cm.season, cm.episode, cm.scene, cm.world_layer,
       cm.perspective, cm.time_code, cm.location, cm.keywords, cm.characters,
       COALESCE(nv.world_time, ''),
       1 - (ce.embedding <=> $1) AS score
FROM %s ce
JOIN narrative_chunks nc ON nc.id = ce.chunk_id
LEFT JOIN chunk_metadata cm ON cm.chunk_id = nc.id
LEFT JOIN narrative_view nv ON nv.id = nc.id
WHERE ce.model = $2%s
ORDER BY ce.embedding <=> $1
LIMIT $%d`, table, where, limitArg)

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: vector search: %v", domain.ErrStorageError, err)
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
			score       float64
		)
		if err := rows.Scan(&chunkID, &rawText, &season, &episode, &scene, &worldLayer,
			&perspective, &timeCode, &location, &keywords, &characters, &worldTime, &score); err != nil {
			return nil, fmt.Errorf("%w: scan vector result: %v", domain.ErrStorageError, err)
		}

		cand := domain.Candidate{
			ID:          fmt.Sprintf("%d", chunkID),
			ChunkID:     &chunkID,
			ContentType: domain.ContentTypeNarrative,
			Text:        rawText,
			Source:      domain.SourceVectorSearch,
			VectorScore: ptr(score),
			Score:       score,
			Metadata:    metadataMap(season, episode, scene, worldLayer, perspective, timeCode, location, worldTime, keywords, characters),
			ModelScores: map[string]float64{modelKey: score},
		}
		out = append(out, cand)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate vector results: %v", domain.ErrStorageError, err)
	}

	return out, nil
}

func ptr(v float64) *float64 { return &v }

func metadataMap(season, episode, scene *int, worldLayer, perspective, timeCode, location *string, worldTime string, keywords, characters []string) map[string]any {
	m := map[string]any{}
	if season != nil {
		m["season"] = *season
	}
	if episode != nil {
		m["episode"] = *episode
	}
	if scene != nil {
		m["scene"] = *scene
	}
	if worldLayer != nil {
		m["world_layer"] = *worldLayer
	}
	if perspective != nil {
		m["perspective"] = *perspective
	}
	if timeCode != nil {
		m["time_code"] = *timeCode
	}
	if location != nil {
		m["location"] = *location
	}
	if worldTime != "" {
		m["world_time"] = worldTime
	}
	if len(keywords) > 0 {
		m["keywords"] = keywords
	}
	if len(characters) > 0 {
		m["characters"] = characters
	}
	return m
}
