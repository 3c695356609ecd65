// Package storage is MEMNON's Storage Adapter: all database I/O, entirely
// read-only for retrieval. It owns the dimension-to-table routing, the
// full-text fallback protocol, entity lookup, and the whitelisted
// read-only SQL executor.
//
// Grounded on the teacher's internal/vectorstore/postgres.go (pgxpool
// construction, pgvector.NewVector encoding, query shape) generalized from
// a single fixed-dimension chat-document table to the per-dimension
// narrative_chunks/chunk_embeddings_<D>/chunk_metadata/characters/places
// contract in spec.md §6, and on
// original_source/nexus/agents/memnon/utils/db_access.py for the hybrid
// scoring formulas and fallback tiers.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"memnon/internal/config"
	"memnon/internal/domain"
)

var errUnsupportedDimension = errors.New("memnon: unsupported embedding dimension")

// Store is the concrete Storage Adapter over Postgres + pgvector.
type Store struct {
	pool       *pgxpool.Pool
	dimToTable map[int]string
	cfg        config.DatabaseConfig
}

// New connects to Postgres and verifies vector capability. Returns
// domain.ErrConfiguration if the vector extension is unavailable — this is
// a startup-fatal condition per spec.md §7, not a per-call recovery case.
func New(ctx context.Context, cfg config.DatabaseConfig, models map[string]config.ModelConfig) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: parse database url: %v", domain.ErrConfiguration, err)
	}
	if cfg.MaxConnections > 0 {
		poolCfg.MaxConns = int32(cfg.MaxConnections)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("%w: connect database: %v", domain.ErrConfiguration, err)
	}

	dims := make(map[int]bool, len(models))
	for _, m := range models {
		if m.Dimensions > 0 {
			dims[m.Dimensions] = true
		}
	}

	s := &Store{
		pool:       pool,
		dimToTable: buildDimensionTableMap(dims),
		cfg:        cfg,
	}

	if err := s.CheckVectorCapability(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// CheckVectorCapability verifies the pgvector extension is installed.
// Grounded on db_schema.py's DatabaseManager, which treats a missing
// vector extension as a hard startup condition.
func (s *Store) CheckVectorCapability(ctx context.Context) error {
	var installed bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM pg_extension WHERE extname = 'vector')`).Scan(&installed)
	if err != nil {
		return fmt.Errorf("%w: check vector extension: %v", domain.ErrConfiguration, err)
	}
	if !installed {
		return fmt.Errorf("%w: vector extension not installed", domain.ErrConfiguration)
	}
	return nil
}
