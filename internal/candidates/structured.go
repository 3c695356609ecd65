package candidates

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"memnon/internal/domain"
	"memnon/internal/storage"
)

// EntityStore is the subset of internal/storage.Store the structured
// generator needs.
type EntityStore interface {
	EntitySearch(ctx context.Context, name string, kind storage.EntityKind, limit int) ([]domain.Candidate, error)
}

// StructuredGenerator calls entity_search for every character/place
// mention the analyzer extracted (spec.md §4.5). Mentions are looked up
// concurrently; a failing lookup contributes zero candidates rather than
// failing the whole call, matching the other generators' degrade-
// gracefully posture.
type StructuredGenerator struct {
	store EntityStore
}

// NewStructuredGenerator builds a StructuredGenerator.
func NewStructuredGenerator(store EntityStore) *StructuredGenerator {
	return &StructuredGenerator{store: store}
}

// Generate looks up every named character and place mention.
func (g *StructuredGenerator) Generate(ctx context.Context, characters, places []string, limit int) ([]domain.Candidate, error) {
	var (
		mu  sync.Mutex
		out []domain.Candidate
	)

	grp, gctx := errgroup.WithContext(ctx)
	for _, name := range characters {
		name := name
		grp.Go(func() error {
			cands, err := g.store.EntitySearch(gctx, name, storage.EntityKindCharacters, limit)
			if err != nil {
				return nil
			}
			mu.Lock()
			out = append(out, cands...)
			mu.Unlock()
			return nil
		})
	}
	for _, name := range places {
		name := name
		grp.Go(func() error {
			cands, err := g.store.EntitySearch(gctx, name, storage.EntityKindPlaces, limit)
			if err != nil {
				return nil
			}
			mu.Lock()
			out = append(out, cands...)
			mu.Unlock()
			return nil
		})
	}
	_ = grp.Wait()

	return out, nil
}
