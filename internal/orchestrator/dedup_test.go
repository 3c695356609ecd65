package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"memnon/internal/domain"
)

func TestDedupKeepsHighestScoringCopy(t *testing.T) {
	cands := []domain.Candidate{
		{ID: "1", Score: 0.2},
		{ID: "1", Score: 0.9},
		{ID: "2", Score: 0.5},
	}
	out := Dedup(cands)

	byID := make(map[string]domain.Candidate, len(out))
	for _, c := range out {
		byID[c.ID] = c
	}
	assert.Len(t, out, 2)
	assert.Equal(t, 0.9, byID["1"].Score)
	assert.Equal(t, 0.5, byID["2"].Score)
}
