package candidates

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memnon/internal/domain"
	"memnon/internal/storage"
)

type fakeEntityStore struct{}

func (f fakeEntityStore) EntitySearch(ctx context.Context, name string, kind storage.EntityKind, limit int) ([]domain.Candidate, error) {
	if kind == storage.EntityKindCharacters {
		return []domain.Candidate{{ID: "character:1", Text: name}}, nil
	}
	return []domain.Candidate{{ID: "place:1", Text: name}}, nil
}

func TestStructuredGeneratorLooksUpBothKinds(t *testing.T) {
	g := NewStructuredGenerator(fakeEntityStore{})

	out, err := g.Generate(context.Background(), []string{"Alex"}, []string{"The Undercity"}, 5)
	require.NoError(t, err)
	assert.Len(t, out, 2)
}

func TestStructuredGeneratorEmptyMentions(t *testing.T) {
	g := NewStructuredGenerator(fakeEntityStore{})

	out, err := g.Generate(context.Background(), nil, nil, 5)
	require.NoError(t, err)
	assert.Empty(t, out)
}
