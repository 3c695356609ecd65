package rerank

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitIntoSentences(t *testing.T) {
	got := splitIntoSentences("First sentence. Second sentence! Third one?")
	assert.Equal(t, []string{"First sentence.", "Second sentence!", "Third one?"}, got)
}

func TestPackWindowsSingleChunkWhenShort(t *testing.T) {
	got := packWindows([]string{"one.", "two.", "three."}, 1000, 2)
	assert.Len(t, got, 1)
}

func TestPackWindowsInsertsOverlap(t *testing.T) {
	sentences := []string{
		"alpha bravo charlie delta.",
		"echo foxtrot golf hotel.",
		"india juliet kilo lima.",
	}
	got := packWindows(sentences, 20, 2)
	// 3 chunks once split by the small budget => 3 chunks + 2 overlap windows.
	assert.Greater(t, len(got), 1)
}

func TestNormalizeScoreAppliesSigmoidOutOfRange(t *testing.T) {
	assert.Equal(t, 0.5, normalizeScore(0.5))
	got := normalizeScore(10.0)
	assert.Greater(t, got, 0.99)
	assert.LessOrEqual(t, got, 1.0)
}
