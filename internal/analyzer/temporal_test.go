package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTemporalIntentNeutralByDefault(t *testing.T) {
	assert.Equal(t, 0.5, TemporalIntent("tell me about the city council"))
}

func TestTemporalIntentEarlySignalLowersScore(t *testing.T) {
	got := TemporalIntent("how did the story begin?")
	assert.Less(t, got, 0.5)
}

func TestTemporalIntentRecentSignalRaisesScore(t *testing.T) {
	got := TemporalIntent("what is the latest development?")
	assert.Greater(t, got, 0.5)
}

func TestTemporalIntentConflictingSignalsPullTowardNeutral(t *testing.T) {
	// "first" (early, 0.1) and "now" (recent, 0.9) both fire; the
	// minimum/maximum pass takes the recent signal (max wins last), then
	// the multi-signal dampening pulls it back toward 0.5 by 20%.
	got := TemporalIntent("first tell me what is happening now")
	assert.InDelta(t, 0.5+(0.9-0.5)*0.8, got, 0.15)
}

func TestTemporalIntentClampedToUnitInterval(t *testing.T) {
	got := TemporalIntent("latest recent newest current now")
	assert.LessOrEqual(t, got, 1.0)
	assert.GreaterOrEqual(t, got, 0.0)
}
