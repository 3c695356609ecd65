package storage

import (
	"context"
	"fmt"
	"strings"

	"memnon/internal/domain"
)

// EntityKind selects which entity table EntitySearch reads.
type EntityKind string

const (
	EntityKindCharacters EntityKind = "characters"
	EntityKindPlaces     EntityKind = "places"
)

// EntitySearch looks up name against the chosen entity table: an exact
// case-insensitive match on name (or, for characters, an alias) returns
// immediately with score 1.0; otherwise a trigram-similarity partial match
// is returned. Grounded on search.py's query_structured_data, which takes
// this same exact-then-partial shape for both characters and places — this
// module resolves the spec's open question about Place partial-match
// scoring by using similarity() there too, not a flat constant.
func (s *Store) EntitySearch(ctx context.Context, name string, kind EntityKind, limit int) ([]domain.Candidate, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrEmptyInput
	}

	switch kind {
	case EntityKindCharacters:
		return s.characterSearch(ctx, name, limit)
	case EntityKindPlaces:
		return s.placeSearch(ctx, name, limit)
	default:
		return nil, fmt.Errorf("%w: unknown entity kind %q", domain.ErrInvalidInput, kind)
	}
}

func (s *Store) characterSearch(ctx context.Context, name string, limit int) ([]domain.Candidate, error) {
	exactSQL := `
SELECT c.id, c.name, c.description, c.role, c.faction, c.status
FROM characters c
LEFT JOIN character_aliases ca ON ca.character_id = c.id
WHERE LOWER(c.name) = LOWER($1) OR LOWER(ca.alias) = LOWER($1)
LIMIT $2`

	if cands, err := s.scanCharacters(ctx, exactSQL, []any{name, limit}, 1.0); err != nil {
		return nil, err
	} else if len(cands) > 0 {
		return cands, nil
	}

	partialSQL := `
SELECT c.id, c.name, c.description, c.role, c.faction, c.status,
       GREATEST(similarity(c.name, $1), COALESCE(similarity(c.description, $1), 0)) AS match_score
FROM characters c
WHERE c.name ILIKE '%' || $1 || '%' OR c.description ILIKE '%' || $1 || '%'
ORDER BY match_score DESC
LIMIT $2`

	return s.scanCharactersScored(ctx, partialSQL, []any{name, limit})
}

func (s *Store) placeSearch(ctx context.Context, name string, limit int) ([]domain.Candidate, error) {
	exactSQL := `SELECT id, name, summary, type, zone, current_status FROM places WHERE LOWER(name) = LOWER($1) LIMIT $2`
	if cands, err := s.scanPlaces(ctx, exactSQL, []any{name, limit}, 1.0); err != nil {
		return nil, err
	} else if len(cands) > 0 {
		return cands, nil
	}

	partialSQL := `
SELECT id, name, summary, type, zone, current_status,
       GREATEST(similarity(name, $1), COALESCE(similarity(summary, $1), 0)) AS match_score
FROM places
WHERE name ILIKE '%' || $1 || '%' OR summary ILIKE '%' || $1 || '%'
ORDER BY match_score DESC
LIMIT $2`

	return s.scanPlacesScored(ctx, partialSQL, []any{name, limit})
}

func (s *Store) scanCharacters(ctx context.Context, sql string, args []any, score float64) ([]domain.Candidate, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: character search: %v", domain.ErrStorageError, err)
	}
	defer rows.Close()

	var out []domain.Candidate
	for rows.Next() {
		var id int64
		var name, description, role, faction, status string
		if err := rows.Scan(&id, &name, &description, &role, &faction, &status); err != nil {
			return nil, fmt.Errorf("%w: scan character: %v", domain.ErrStorageError, err)
		}
		out = append(out, characterCandidate(id, name, description, role, faction, status, score))
	}
	return out, rows.Err()
}

func (s *Store) scanCharactersScored(ctx context.Context, sql string, args []any) ([]domain.Candidate, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: character search: %v", domain.ErrStorageError, err)
	}
	defer rows.Close()

	var out []domain.Candidate
	for rows.Next() {
		var id int64
		var name, description, role, faction, status string
		var score float64
		if err := rows.Scan(&id, &name, &description, &role, &faction, &status, &score); err != nil {
			return nil, fmt.Errorf("%w: scan character: %v", domain.ErrStorageError, err)
		}
		out = append(out, characterCandidate(id, name, description, role, faction, status, score))
	}
	return out, rows.Err()
}

func (s *Store) scanPlaces(ctx context.Context, sql string, args []any, score float64) ([]domain.Candidate, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: place search: %v", domain.ErrStorageError, err)
	}
	defer rows.Close()

	var out []domain.Candidate
	for rows.Next() {
		var id, zone int64
		var name, summary, placeType, currentStatus string
		if err := rows.Scan(&id, &name, &summary, &placeType, &zone, &currentStatus); err != nil {
			return nil, fmt.Errorf("%w: scan place: %v", domain.ErrStorageError, err)
		}
		out = append(out, placeCandidate(id, name, summary, placeType, zone, currentStatus, score))
	}
	return out, rows.Err()
}

func (s *Store) scanPlacesScored(ctx context.Context, sql string, args []any) ([]domain.Candidate, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: place search: %v", domain.ErrStorageError, err)
	}
	defer rows.Close()

	var out []domain.Candidate
	for rows.Next() {
		var id, zone int64
		var name, summary, placeType, currentStatus string
		var score float64
		if err := rows.Scan(&id, &name, &summary, &placeType, &zone, &currentStatus, &score); err != nil {
			return nil, fmt.Errorf("%w: scan place: %v", domain.ErrStorageError, err)
		}
		out = append(out, placeCandidate(id, name, summary, placeType, zone, currentStatus, score))
	}
	return out, rows.Err()
}

func characterCandidate(id int64, name, description, role, faction, status string, score float64) domain.Candidate {
	return domain.Candidate{
		ID:          fmt.Sprintf("character:%d", id),
		ContentType: domain.ContentTypeCharacter,
		Text:        description,
		Source:      domain.SourceStructuredData,
		Score:       score,
		Metadata: map[string]any{
			"name": name, "role": role, "faction": faction, "status": status,
		},
	}
}

func placeCandidate(id int64, name, summary, placeType string, zone int64, currentStatus string, score float64) domain.Candidate {
	return domain.Candidate{
		ID:          fmt.Sprintf("place:%d", id),
		ContentType: domain.ContentTypePlace,
		Text:        summary,
		Source:      domain.SourceStructuredData,
		Score:       score,
		Metadata: map[string]any{
			"name": name, "type": placeType, "zone": zone, "current_status": currentStatus,
		},
	}
}
