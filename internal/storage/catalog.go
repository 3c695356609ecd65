package storage

import (
	"context"
	"fmt"

	"memnon/internal/domain"
)

// AllCharacters loads every character and its aliases, used once at
// startup to build the Query Analyzer's entity-extraction pattern table
// (implements analyzer.EntityCatalog).
func (s *Store) AllCharacters(ctx context.Context) ([]domain.Character, error) {
	rows, err := s.pool.Query(ctx, `
SELECT c.id, c.name, c.description, c.role, c.faction, c.status,
       c.current_activity, c.current_location,
       COALESCE(array_agg(ca.alias) FILTER (WHERE ca.alias IS NOT NULL), '{}')
FROM characters c
LEFT JOIN character_aliases ca ON ca.character_id = c.id
GROUP BY c.id, c.name, c.description, c.role, c.faction, c.status, c.current_activity, c.current_location`)
	if err != nil {
		return nil, fmt.Errorf("%w: load characters: %v", domain.ErrStorageError, err)
	}
	defer rows.Close()

	var out []domain.Character
	for rows.Next() {
		var c domain.Character
		if err := rows.Scan(&c.ID, &c.Name, &c.Summary, &c.Role, &c.Faction, &c.Status,
			&c.CurrentActivity, &c.CurrentLocation, &c.Aliases); err != nil {
			return nil, fmt.Errorf("%w: scan character: %v", domain.ErrStorageError, err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// AllPlaces loads every place (implements analyzer.EntityCatalog).
func (s *Store) AllPlaces(ctx context.Context) ([]domain.Place, error) {
	rows, err := s.pool.Query(ctx, `
SELECT id, name, summary, type, zone, current_status
FROM places`)
	if err != nil {
		return nil, fmt.Errorf("%w: load places: %v", domain.ErrStorageError, err)
	}
	defer rows.Close()

	var out []domain.Place
	for rows.Next() {
		var p domain.Place
		if err := rows.Scan(&p.ID, &p.Name, &p.Summary, &p.Type, &p.Zone, &p.CurrentStatus); err != nil {
			return nil, fmt.Errorf("%w: scan place: %v", domain.ErrStorageError, err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
