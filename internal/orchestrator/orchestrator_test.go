package orchestrator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memnon/internal/config"
	"memnon/internal/domain"
)

func scorePtr(v float64) *float64 { return &v }

type fakeAnalyzer struct {
	analysis domain.QueryAnalysis
}

func (f fakeAnalyzer) Analyze(text string) domain.QueryAnalysis { return f.analysis }

type fakeChunkLookup struct {
	chunks      map[int64]domain.Candidate
	totalChunks int64
}

func (f fakeChunkLookup) GetChunkByID(ctx context.Context, id int64) (domain.Candidate, bool, error) {
	c, ok := f.chunks[id]
	return c, ok, nil
}

func (f fakeChunkLookup) TotalChunks(ctx context.Context) (int64, error) {
	return f.totalChunks, nil
}

type fakeVectorGen struct {
	out []domain.Candidate
	err error
}

func (f fakeVectorGen) Generate(ctx context.Context, text string, filters domain.Filters, topK int) ([]domain.Candidate, error) {
	return f.out, f.err
}

type fakeTextGen struct {
	out []domain.Candidate
	err error
}

func (f fakeTextGen) Generate(ctx context.Context, text string, maxTerms int, filters domain.Filters, topK int) ([]domain.Candidate, error) {
	return f.out, f.err
}

type fakeStructGen struct {
	out []domain.Candidate
	err error
}

func (f fakeStructGen) Generate(ctx context.Context, characters, places []string, limit int) ([]domain.Candidate, error) {
	return f.out, f.err
}

// fakeMerger mirrors internal/storage.Store.MergeHybrid closely enough for
// unit tests: vector hits keep their vector_score and pick up a text_score
// from the matching text hit, or 0 if there is none.
type fakeMerger struct{}

func (fakeMerger) MergeHybrid(ctx context.Context, vectorCands, textCands []domain.Candidate, weightedQuery, rawText string) []domain.Candidate {
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
		}
		out = append(out, c)
	}
	for _, c := range textCands {
		if !seen[c.ID] {
			out = append(out, c)
		}
	}
	return out
}

type fakeWeighter struct{}

func (fakeWeighter) WeightedQuery(text string, maxTerms int) string { return text }

func testRetrievalConfig() config.RetrievalConfig {
	return config.RetrievalConfig{
		MaxResults: 10,
		HybridSearch: config.HybridSearchConfig{
			Enabled:             true,
			VectorWeightDefault: 0.8,
			TextWeightDefault:   0.2,
		},
		StructuredDataEnabled: true,
	}
}

func TestQueryMemoryDirectChunkIDLookup(t *testing.T) {
	chunkID := int64(42)
	o := New(
		fakeAnalyzer{},
		fakeChunkLookup{chunks: map[int64]domain.Candidate{42: {ID: "42", ChunkID: &chunkID, Score: 1.0}}, totalChunks: 1000},
		fakeVectorGen{},
		fakeTextGen{},
		fakeStructGen{},
		fakeMerger{},
		fakeWeighter{},
		nil,
		nil,
		testRetrievalConfig(),
		12,
	)

	result, err := o.QueryMemory(context.Background(), domain.Query{Text: "chunk_id:42", TopK: 10})
	require.NoError(t, err)
	assert.Equal(t, domain.QueryTypeDirectID, result.QueryType)
	require.Len(t, result.Results, 1)
	assert.Equal(t, "42", result.Results[0].ID)
	assert.Equal(t, 1.0, result.Results[0].Score)
	assert.Equal(t, []string{"direct_id_lookup"}, result.Metadata.SearchStrategies)
}

func TestQueryMemoryPureVectorQueryOnTwoModelConfig(t *testing.T) {
	cfg := testRetrievalConfig()
	cfg.HybridSearch.Enabled = false
	cfg.StructuredDataEnabled = false

	vectorOut := []domain.Candidate{
		{ID: "1", Source: domain.SourceVectorSearch, VectorScore: scorePtr(0.6), ModelScores: map[string]float64{"bge-large": 0.8, "e5-large": 0.4}},
	}
	o := New(
		fakeAnalyzer{analysis: domain.QueryAnalysis{Type: domain.QueryTypeCharacter}},
		fakeChunkLookup{totalChunks: 1000},
		fakeVectorGen{out: vectorOut},
		fakeTextGen{},
		fakeStructGen{},
		fakeMerger{},
		fakeWeighter{},
		nil,
		nil,
		cfg,
		12,
	)

	result, err := o.QueryMemory(context.Background(), domain.Query{Text: "Who is Alex?", TopK: 10})
	require.NoError(t, err)
	assert.Equal(t, domain.QueryTypeCharacter, result.QueryType)
	assert.Equal(t, []string{"vector_search"}, result.Metadata.SearchStrategies)
	require.Len(t, result.Results, 1)
	assert.InDelta(t, 0.6, *result.Results[0].VectorScore, 1e-9)
	assert.Nil(t, result.Results[0].TextScore)
}

func TestQueryMemoryHybridWithRareTermAdjustsWeights(t *testing.T) {
	cfg := testRetrievalConfig()
	cfg.HybridSearch.RareTermMinTextWeight = 0.5
	cfg.HybridSearch.RareTermIDFThreshold = 3.0
	cfg.StructuredDataEnabled = false

	// No text hit at all: with the default weights (vector=0.8) the fused
	// score would be 0.8; once the rare term lifts text_weight to 0.5 it
	// must drop to 0.5 (vector_weight*1.0 + text_weight*0).
	vectorOut := []domain.Candidate{{ID: "1", Source: domain.SourceVectorSearch, VectorScore: scorePtr(1.0)}}
	o := New(
		fakeAnalyzer{analysis: domain.QueryAnalysis{Type: domain.QueryTypeGeneral}},
		fakeChunkLookup{totalChunks: 1000},
		fakeVectorGen{out: vectorOut},
		fakeTextGen{},
		fakeStructGen{},
		fakeMerger{},
		fakeWeighter{},
		rareTermSourceFunc(func(text string, threshold float64) []string {
			return []string{"resurrection"}
		}),
		nil,
		cfg,
		12,
	)

	result, err := o.QueryMemory(context.Background(), domain.Query{Text: "Sullivan karaoke resurrection", TopK: 10})
	require.NoError(t, err)
	require.Len(t, result.Results, 1)
	assert.InDelta(t, 0.5, result.Results[0].Score, 1e-9)
}

func TestQueryMemoryTemporalQueryWithEarlyIntentPromotesLowPosition(t *testing.T) {
	cfg := testRetrievalConfig()
	cfg.HybridSearch.Enabled = false
	cfg.HybridSearch.TemporalBoostFactor = 0.3
	cfg.StructuredDataEnabled = false

	earlyID, lateID := int64(10), int64(900)
	vectorOut := []domain.Candidate{
		{ID: "early", ChunkID: &earlyID, Source: domain.SourceVectorSearch, VectorScore: scorePtr(0.5)},
		{ID: "late", ChunkID: &lateID, Source: domain.SourceVectorSearch, VectorScore: scorePtr(0.5)},
	}
	o := New(
		fakeAnalyzer{analysis: domain.QueryAnalysis{Type: domain.QueryTypeGeneral, TemporalIntent: 0.1}},
		fakeChunkLookup{totalChunks: 1000},
		fakeVectorGen{out: vectorOut},
		fakeTextGen{},
		fakeStructGen{},
		fakeMerger{},
		fakeWeighter{},
		nil,
		nil,
		cfg,
		12,
	)

	result, err := o.QueryMemory(context.Background(), domain.Query{Text: "How did the story begin?", TopK: 10})
	require.NoError(t, err)
	require.Len(t, result.Results, 2)
	assert.Equal(t, "early", result.Results[0].ID)
	assert.Equal(t, "late", result.Results[1].ID)
}

func TestQueryMemoryStructuredEntityExactHit(t *testing.T) {
	cfg := testRetrievalConfig()
	cfg.HybridSearch.Enabled = false

	structOut := []domain.Candidate{
		{ID: "character:1", ContentType: domain.ContentTypeCharacter, Source: domain.SourceStructuredData, Score: 1.0, Metadata: map[string]any{"name": "Emilia"}},
	}
	o := New(
		fakeAnalyzer{analysis: domain.QueryAnalysis{Type: domain.QueryTypeCharacter, Characters: []string{"Emilia"}}},
		fakeChunkLookup{totalChunks: 1000},
		fakeVectorGen{},
		fakeTextGen{},
		fakeStructGen{out: structOut},
		fakeMerger{},
		fakeWeighter{},
		nil,
		nil,
		cfg,
		12,
	)

	result, err := o.QueryMemory(context.Background(), domain.Query{Text: "Emilia", TopK: 10})
	require.NoError(t, err)
	require.Len(t, result.Results, 1)
	assert.Equal(t, domain.ContentTypeCharacter, result.Results[0].ContentType)
	assert.Equal(t, domain.SourceStructuredData, result.Results[0].Source)
	assert.Equal(t, 1.0, result.Results[0].Score)
	assert.Equal(t, "Emilia", result.Results[0].Metadata["name"])
}

func TestQueryMemoryIsolatesFailingStrategy(t *testing.T) {
	cfg := testRetrievalConfig()
	cfg.HybridSearch.Enabled = false
	cfg.StructuredDataEnabled = false

	o := New(
		fakeAnalyzer{analysis: domain.QueryAnalysis{Type: domain.QueryTypeGeneral}},
		fakeChunkLookup{totalChunks: 1000},
		fakeVectorGen{err: errors.New("model B failed to load")},
		fakeTextGen{},
		fakeStructGen{},
		fakeMerger{},
		fakeWeighter{},
		nil,
		nil,
		cfg,
		12,
	)

	result, err := o.QueryMemory(context.Background(), domain.Query{Text: "any query", TopK: 10})
	require.NoError(t, err)
	assert.Empty(t, result.Results)
	assert.Empty(t, result.Metadata.SearchStrategies)
	require.Len(t, result.Metadata.Errors, 1)
	assert.Contains(t, result.Metadata.Errors[0], "model B failed to load")
}

// rareTermSourceFunc adapts a plain function to fusion.RareTermSource so
// tests can stub HighIDFTerms without a real IDF dictionary.
type rareTermSourceFunc func(text string, threshold float64) []string

func (f rareTermSourceFunc) HighIDFTerms(text string, threshold float64) []string {
	return f(text, threshold)
}
