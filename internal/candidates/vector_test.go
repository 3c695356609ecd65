package candidates

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memnon/internal/domain"
)

type fakeEmbedder struct {
	weights map[string]float64
}

func (f fakeEmbedder) AvailableModels() []string {
	out := make([]string, 0, len(f.weights))
	for k := range f.weights {
		out = append(out, k)
	}
	return out
}

func (f fakeEmbedder) Weight(modelKey string) float64 { return f.weights[modelKey] }

func (f fakeEmbedder) Embed(ctx context.Context, text, modelKey string) ([]float32, error) {
	return []float32{0.1}, nil
}

type fakeVectorStore struct {
	perModel map[string][]domain.Candidate
}

func (f fakeVectorStore) VectorSearch(ctx context.Context, emb []float32, modelKey string, filters domain.Filters, topK int) ([]domain.Candidate, error) {
	return f.perModel[modelKey], nil
}

func scorePtr(v float64) *float64 { return &v }

func TestVectorGeneratorMergesAcrossModels(t *testing.T) {
	embedder := fakeEmbedder{weights: map[string]float64{"bge-large": 0.5, "e5-large": 0.5}}
	store := fakeVectorStore{perModel: map[string][]domain.Candidate{
		"bge-large": {{ID: "1", VectorScore: scorePtr(0.8)}},
		"e5-large":  {{ID: "1", VectorScore: scorePtr(0.4)}},
	}}
	g := NewVectorGenerator(embedder, store)

	out, err := g.Generate(context.Background(), "query", domain.Filters{}, 10)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.InDelta(t, 0.6, out[0].Score, 1e-9)
	assert.Len(t, out[0].ModelScores, 2)
}

func TestVectorGeneratorSkipsZeroWeightModels(t *testing.T) {
	embedder := fakeEmbedder{weights: map[string]float64{"bge-large": 0.5, "dead-model": 0}}
	store := fakeVectorStore{perModel: map[string][]domain.Candidate{
		"bge-large": {{ID: "1", VectorScore: scorePtr(0.8)}},
	}}
	g := NewVectorGenerator(embedder, store)

	out, err := g.Generate(context.Background(), "query", domain.Filters{}, 10)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Len(t, out[0].ModelScores, 1)
}
