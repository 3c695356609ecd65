package analyzer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memnon/internal/domain"
)

func TestIsChunkIDLookup(t *testing.T) {
	id, ok := IsChunkIDLookup("chunk_id:482")
	require.True(t, ok)
	assert.Equal(t, int64(482), id)

	_, ok = IsChunkIDLookup("what happened to chunk 482")
	assert.False(t, ok)

	_, ok = IsChunkIDLookup("chunk_id:not-a-number")
	assert.False(t, ok)
}

func TestAnalyzeCombinesAllSignals(t *testing.T) {
	catalog := fakeCatalog{
		characters: []domain.Character{{Name: "Alex"}},
	}
	ext, err := NewExtractor(context.Background(), catalog, "")
	require.NoError(t, err)

	a := New(nil, ext)
	result := a.Analyze("who is Alex, and how did their story begin?")

	assert.Equal(t, domain.QueryTypeCharacter, result.Type)
	assert.Contains(t, result.Characters, "Alex")
	assert.Less(t, result.TemporalIntent, 0.5)
	assert.NotEmpty(t, result.Keywords)
}
