package fusion

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"memnon/internal/config"
	"memnon/internal/domain"
)

func ptr(v float64) *float64 { return &v }

func TestFuseDefaultsMissingScoreToZero(t *testing.T) {
	cands := []domain.Candidate{
		{ID: "1", VectorScore: ptr(0.8)},
		{ID: "2", TextScore: ptr(0.6)},
	}
	out := Fuse(cands, 0.6, 0.4, nil)
	assert.InDelta(t, 0.48, out[0].Score, 1e-9)
	assert.InDelta(t, 0.24, out[1].Score, 1e-9)
}

func TestFuseAppliesSourceWeight(t *testing.T) {
	cands := []domain.Candidate{
		{ID: "1", VectorScore: ptr(1.0), Source: domain.SourceStructuredData},
	}
	out := Fuse(cands, 1.0, 0.0, map[string]float64{"structured_data": 1.1})
	assert.InDelta(t, 1.0, out[0].Score, 1e-9) // clamped
}

func TestFuseClampsToUnitInterval(t *testing.T) {
	cands := []domain.Candidate{
		{ID: "1", VectorScore: ptr(1.0), Source: domain.SourceVectorSearch},
	}
	out := Fuse(cands, 1.0, 0.0, map[string]float64{"vector_search": 2.0})
	assert.Equal(t, 1.0, out[0].Score)
}

type fakeRareSource struct{ terms []string }

func (f fakeRareSource) HighIDFTerms(text string, threshold float64) []string { return f.terms }

func TestAdjustForRareTermsLiftsTextWeight(t *testing.T) {
	cfg := config.HybridSearchConfig{RareTermMinTextWeight: 0.5, RareTermIDFThreshold: 3.0}
	v, te := AdjustForRareTerms(cfg, fakeRareSource{terms: []string{"resurrection"}}, "resurrection encounter", 0.8, 0.2, domain.QueryTypeCharacter)
	assert.InDelta(t, 0.5, te, 1e-9)
	assert.InDelta(t, 0.5, v, 1e-9)
}

func TestAdjustForRareTermsLeavesNonRareUnchanged(t *testing.T) {
	cfg := config.HybridSearchConfig{RareTermMinTextWeight: 0.5, RareTermIDFThreshold: 3.0}
	v, te := AdjustForRareTerms(cfg, fakeRareSource{}, "common words only", 0.7, 0.3, domain.QueryTypeGeneral)
	assert.InDelta(t, 0.7, v, 1e-9)
	assert.InDelta(t, 0.3, te, 1e-9)
}

func TestAdjustForRareTermsSkipsExcludedQueryType(t *testing.T) {
	cfg := config.HybridSearchConfig{
		RareTermMinTextWeight:      0.5,
		RareTermIDFThreshold:       3.0,
		RareTermExcludedQueryTypes: []string{"lore"},
	}
	v, te := AdjustForRareTerms(cfg, fakeRareSource{terms: []string{"resurrection"}}, "resurrection encounter", 0.8, 0.2, "lore")
	assert.InDelta(t, 0.8, v, 1e-9)
	assert.InDelta(t, 0.2, te, 1e-9)
}

func TestWeightsForQueryTypeOverride(t *testing.T) {
	cfg := config.HybridSearchConfig{
		VectorWeightDefault: 0.6,
		TextWeightDefault:   0.4,
		UseQueryTypeWeights: true,
		WeightsByQueryType: map[string]config.WeightPair{
			"character": {Vector: 0.3, Text: 0.7},
		},
	}
	v, te := WeightsForQueryType(cfg, domain.QueryTypeCharacter)
	assert.Equal(t, 0.3, v)
	assert.Equal(t, 0.7, te)

	v, te = WeightsForQueryType(cfg, domain.QueryTypeGeneral)
	assert.Equal(t, 0.6, v)
	assert.Equal(t, 0.4, te)
}
