package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"memnon/internal/domain"
)

// AllChunkTexts streams every chunk's raw text, implementing
// internal/idf.ChunkSource for dictionary builds. The channel is closed
// when the scan completes or the context is cancelled. A row scan or
// iteration error ends the stream early and is logged, not returned;
// cancellation is visible to the caller's Build through ctx.Err() after
// the loop.
func (s *Store) AllChunkTexts(ctx context.Context) (<-chan string, error) {
	rows, err := s.pool.Query(ctx, `SELECT raw_text FROM narrative_chunks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: scan chunk texts: %v", domain.ErrStorageError, err)
	}

	ch := make(chan string, 64)
	go func() {
		defer rows.Close()
		defer close(ch)
		for rows.Next() {
			var text string
			if err := rows.Scan(&text); err != nil {
				log.Error().Err(err).Msg("scan chunk text, ending stream")
				return
			}
			select {
			case ch <- text:
			case <-ctx.Done():
				return
			}
		}
		if err := rows.Err(); err != nil {
			log.Error().Err(err).Msg("iterate chunk texts, ending stream")
		}
	}()
	return ch, nil
}

// TotalChunks returns the corpus size, used by the temporal reweighter to
// compute chunk_id / total_chunks.
func (s *Store) TotalChunks(ctx context.Context) (int64, error) {
	var total int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM narrative_chunks`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("%w: count chunks: %v", domain.ErrStorageError, err)
	}
	return total, nil
}

// GetChunkByID fetches a single chunk directly, for the reserved
// chunk_id:<int> query prefix (spec.md §4.8 step 1).
func (s *Store) GetChunkByID(ctx context.Context, id int64) (domain.Candidate, bool, error) {
	sql := `
SELECT nc.id, nc.raw_text, cm.season, cm.episode, cm.scene, cm.world_layer,
       cm.perspective, cm.time_code, cm.location, cm.keywords, cm.characters,
       COALESCE(nv.world_time, '')
FROM narrative_chunks nc
LEFT JOIN chunk_metadata cm ON cm.chunk_id = nc.id
LEFT JOIN narrative_view nv ON nv.id = nc.id
WHERE nc.id = $1`

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
	err := s.pool.QueryRow(ctx, sql, id).Scan(&chunkID, &rawText, &season, &episode, &scene,
		&worldLayer, &perspective, &timeCode, &location, &keywords, &characters, &worldTime)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Candidate{}, false, nil
		}
		return domain.Candidate{}, false, fmt.Errorf("%w: get chunk by id: %v", domain.ErrStorageError, err)
	}

	return domain.Candidate{
		ID:          fmt.Sprintf("%d", chunkID),
		ChunkID:     &chunkID,
		ContentType: domain.ContentTypeNarrative,
		Text:        rawText,
		Source:      domain.SourceDirectIDLookup,
		Score:       1.0,
		Metadata:    metadataMap(season, episode, scene, worldLayer, perspective, timeCode, location, worldTime, keywords, characters),
	}, true, nil
}
