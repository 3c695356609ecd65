package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"memnon/internal/domain"
)

func TestClassifyFirstMatchWins(t *testing.T) {
	c := NewClassifier(nil)

	// "who is" (character) appears before "where" (location) would match in
	// evaluation order, so character must win even though both patterns
	// are present in the text.
	got := c.Classify("who is the person where the district meeting happened?")
	assert.Equal(t, domain.QueryTypeCharacter, got)
}

func TestClassifyLocation(t *testing.T) {
	c := NewClassifier(nil)
	assert.Equal(t, domain.QueryTypeLocation, c.Classify("where did this take place in the city?"))
}

func TestClassifyDefaultsToGeneral(t *testing.T) {
	c := NewClassifier(nil)
	assert.Equal(t, domain.QueryTypeGeneral, c.Classify("tell me something interesting"))
}

func TestClassifyOverridePattern(t *testing.T) {
	c := NewClassifier(map[string][]string{"theme": {`\bleitmotif\b`}})
	assert.Equal(t, domain.QueryTypeTheme, c.Classify("what is the leitmotif here"))
}
