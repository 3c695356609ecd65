// Package candidates implements the three candidate generators (vector,
// text, structured) over internal/storage, internal/embedding, and
// internal/idf. Each generator returns the same domain.Candidate shape;
// the orchestrator decides which to run for a given query's strategy.
package candidates

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"memnon/internal/domain"
)

// Embedder is the subset of internal/embedding.Service the vector
// generator needs.
type Embedder interface {
	AvailableModels() []string
	Weight(modelKey string) float64
	Embed(ctx context.Context, text, modelKey string) ([]float32, error)
}

// VectorStore is the subset of internal/storage.Store the vector
// generator needs.
type VectorStore interface {
	VectorSearch(ctx context.Context, queryEmbedding []float32, modelKey string, filters domain.Filters, topK int) ([]domain.Candidate, error)
}

// VectorGenerator embeds a query under every active model with non-zero
// weight (concurrently), runs one vector_search per model, and fuses the
// per-model hits into a single candidate set with model_scores preserved.
// Grounded on Aman-CERP's pkg/searcher/fusion.go hybridSearch — independent
// branches run concurrently and a failing branch degrades gracefully
// rather than failing the whole call.
type VectorGenerator struct {
	embedder Embedder
	store    VectorStore
}

// NewVectorGenerator builds a VectorGenerator.
func NewVectorGenerator(embedder Embedder, store VectorStore) *VectorGenerator {
	return &VectorGenerator{embedder: embedder, store: store}
}

type modelHit struct {
	model      string
	candidates []domain.Candidate
}

// Generate embeds text under every active model and merges each model's
// vector_search hits by chunk id, computing vector_score as the weighted
// mean of the models that actually returned a score for that chunk
// (spec.md §4.5).
func (g *VectorGenerator) Generate(ctx context.Context, text string, filters domain.Filters, topK int) ([]domain.Candidate, error) {
	models := g.embedder.AvailableModels()

	var (
		hits []modelHit
		mu   sync.Mutex
	)

	grp, gctx := errgroup.WithContext(ctx)
	for _, model := range models {
		model := model
		weight := g.embedder.Weight(model)
		if weight <= 0 {
			continue
		}
		grp.Go(func() error {
			vec, err := g.embedder.Embed(gctx, text, model)
			if err != nil {
				log.Warn().Err(err).Str("model", model).Msg("vector generator: embed failed, skipping model")
				return nil
			}
			cands, err := g.store.VectorSearch(gctx, vec, model, filters, topK)
			if err != nil {
				log.Warn().Err(err).Str("model", model).Msg("vector generator: vector_search failed, skipping model")
				return nil
			}
			mu.Lock()
			hits = append(hits, modelHit{model: model, candidates: cands})
			mu.Unlock()
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, fmt.Errorf("%w: vector generator: %v", domain.ErrStorageError, err)
	}

	return mergeModelHits(hits, g.embedder), nil
}

func mergeModelHits(hits []modelHit, embedder Embedder) []domain.Candidate {
	type accum struct {
		cand   domain.Candidate
		scores map[string]float64
	}
	merged := make(map[string]*accum)

	for _, hit := range hits {
		for _, c := range hit.candidates {
			a, ok := merged[c.ID]
			if !ok {
				a = &accum{cand: c, scores: map[string]float64{}}
				merged[c.ID] = a
			}
			if c.VectorScore != nil {
				a.scores[hit.model] = *c.VectorScore
			}
		}
	}

	out := make([]domain.Candidate, 0, len(merged))
	for _, a := range merged {
		weightedSum, weightSum := 0.0, 0.0
		for model, score := range a.scores {
			w := embedder.Weight(model)
			weightedSum += w * score
			weightSum += w
		}
		vectorScore := 0.0
		if weightSum > 0 {
			vectorScore = weightedSum / weightSum
		}

		c := a.cand
		c.Source = domain.SourceVectorSearch
		c.VectorScore = floatPtr(vectorScore)
		c.ModelScores = a.scores
		c.Score = vectorScore
		out = append(out, c)
	}
	return out
}

func floatPtr(v float64) *float64 { return &v }
