package analyzer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memnon/internal/domain"
)

type fakeCatalog struct {
	characters []domain.Character
	places     []domain.Place
}

func (f fakeCatalog) AllCharacters(ctx context.Context) ([]domain.Character, error) {
	return f.characters, nil
}

func (f fakeCatalog) AllPlaces(ctx context.Context) ([]domain.Place, error) {
	return f.places, nil
}

func TestExtractorResolvesAlias(t *testing.T) {
	catalog := fakeCatalog{
		characters: []domain.Character{
			{Name: "Dr. Nyati", Aliases: []string{"the doctor", "Nyati"}},
		},
	}
	ext, err := NewExtractor(context.Background(), catalog, "")
	require.NoError(t, err)

	characters, _ := ext.Extract("what does the doctor think about this?")
	assert.Equal(t, []string{"Dr. Nyati"}, characters)
}

func TestExtractorSecondPersonPOV(t *testing.T) {
	catalog := fakeCatalog{
		characters: []domain.Character{
			{Name: "Alex", Aliases: nil},
		},
	}
	ext, err := NewExtractor(context.Background(), catalog, "Alex")
	require.NoError(t, err)

	characters, _ := ext.Extract("how do you feel about yourself right now")
	assert.Equal(t, []string{"Alex"}, characters)
}

func TestExtractorPlaces(t *testing.T) {
	catalog := fakeCatalog{
		places: []domain.Place{{Name: "The Undercity"}},
	}
	ext, err := NewExtractor(context.Background(), catalog, "")
	require.NoError(t, err)

	_, places := ext.Extract("she went down to the undercity alone")
	assert.Equal(t, []string{"The Undercity"}, places)
}

func TestExtractorNoMatch(t *testing.T) {
	catalog := fakeCatalog{
		characters: []domain.Character{{Name: "Alex"}},
	}
	ext, err := NewExtractor(context.Background(), catalog, "")
	require.NoError(t, err)

	characters, places := ext.Extract("nothing relevant here")
	assert.Empty(t, characters)
	assert.Empty(t, places)
}
