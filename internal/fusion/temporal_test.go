package fusion

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"memnon/internal/domain"
)

func TestTemporalPosition(t *testing.T) {
	assert.InDelta(t, 0.5, TemporalPosition(500, 1000), 1e-9)
	assert.Equal(t, 0.0, TemporalPosition(0, 0))
}

func TestEffectiveBoostFactorNonTemporalSkipped(t *testing.T) {
	assert.Equal(t, 0.0, EffectiveBoostFactor(0.3, 0.48))
}

func TestEffectiveBoostFactorWeaklyTemporalHalved(t *testing.T) {
	assert.InDelta(t, 0.15, EffectiveBoostFactor(0.3, 0.42), 1e-9)
}

func TestEffectiveBoostFactorStrongTemporalUsesFullFactor(t *testing.T) {
	assert.Equal(t, 0.3, EffectiveBoostFactor(0.3, 0.1))
}

func TestApplyTemporalBoostZeroFactorIsNoop(t *testing.T) {
	assert.InDelta(t, 0.7, ApplyTemporalBoost(0.7, 0.9, 0.1, 0), 1e-9)
}

func TestApplyTemporalBoostPerfectMatchRaisesScore(t *testing.T) {
	got := ApplyTemporalBoost(0.5, 0.0, 0.0, 0.5)
	assert.Greater(t, got, 0.5)
}

func TestApplyTemporalBoostSharpensMatchForStrongIntent(t *testing.T) {
	// temporalIntent=0.0 is the strongest possible intent (|intent-0.5|=0.5,
	// comfortably past the 0.25 threshold), so match must be raised to the
	// 1.5 power rather than used linearly.
	match := 1 - 0.5 // |0.0 - 0.5|
	want := math.Pow(match, 1.5)
	got := ApplyTemporalBoost(0.5, 0.5, 0.0, 1.0)
	assert.InDelta(t, want, got, 1e-9)
}

func TestApplyTemporalBoostDoesNotSharpenAtExactBoundary(t *testing.T) {
	// |intent-0.5| == 0.25 exactly must NOT trigger sharpening (strict >).
	match := 1 - 0.25 // |0.75 - 0.5|
	got := ApplyTemporalBoost(0.5, 0.5, 0.75, 1.0)
	assert.InDelta(t, match, got, 1e-9)
}

func TestApplyTemporalBoostClampsToUnitInterval(t *testing.T) {
	got := ApplyTemporalBoost(0.5, 1.0, 0.0, 1.0)
	assert.GreaterOrEqual(t, got, 0.0)
	assert.LessOrEqual(t, got, 1.0)
}

func TestReweightCandidatesSkipsNonTemporalQuery(t *testing.T) {
	chunkID := int64(500)
	cands := []domain.Candidate{{ID: "1", ChunkID: &chunkID, Score: 0.6}}
	out := ReweightCandidates(cands, 1000, 0.48, 0.3)
	assert.Equal(t, cands, out)
}

func TestReweightCandidatesAttachesDiagnostics(t *testing.T) {
	chunkID := int64(900)
	cands := []domain.Candidate{{ID: "1", ChunkID: &chunkID, Score: 0.6}}
	out := ReweightCandidates(cands, 1000, 1.0, 0.5)
	require := out[0]
	assert.NotNil(t, require.OriginalScore)
	assert.Equal(t, 0.6, *require.OriginalScore)
	assert.NotNil(t, require.TemporalPosition)
	assert.InDelta(t, 0.9, *require.TemporalPosition, 1e-9)
}

func TestReweightCandidatesSkipsStructuredDataHits(t *testing.T) {
	cands := []domain.Candidate{{ID: "character:1", Score: 0.9}}
	out := ReweightCandidates(cands, 1000, 1.0, 0.5)
	assert.Nil(t, out[0].TemporalPosition)
}
