package analyzer

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"memnon/internal/domain"
)

// povPronouns are mapped onto the configured point-of-view character's
// alias set, because second-person passages in the corpus refer to that
// same entity (spec.md §4.4, §9 "Alias resolution with second-person
// POV").
var povPronouns = []string{"you", "your", "yours", "yourself"}

// EntityCatalog is the read-only entity listing the extractor needs at
// startup to build its canonical-name/alias pattern table. internal/storage
// satisfies this.
type EntityCatalog interface {
	AllCharacters(ctx context.Context) ([]domain.Character, error)
	AllPlaces(ctx context.Context) ([]domain.Place, error)
}

type entityPattern struct {
	canonical string
	pattern   *regexp.Regexp
}

// Extractor regex-scans a query against every known canonical name and
// alias, returning the canonical names it finds. It is built once at
// startup (loading the {canonical → [alias]} map is not cheap enough to
// repeat per query) and is safe for concurrent use — it holds no mutable
// state after construction.
type Extractor struct {
	characters []entityPattern
	places     []entityPattern
}

// NewExtractor loads every character and place from catalog and compiles
// one match pattern per canonical name plus each of its aliases. If
// povCharacter names a known character, the second-person pronouns are
// added to that character's alias set.
func NewExtractor(ctx context.Context, catalog EntityCatalog, povCharacter string) (*Extractor, error) {
	characters, err := catalog.AllCharacters(ctx)
	if err != nil {
		return nil, fmt.Errorf("load characters for entity extraction: %w", err)
	}
	places, err := catalog.AllPlaces(ctx)
	if err != nil {
		return nil, fmt.Errorf("load places for entity extraction: %w", err)
	}

	e := &Extractor{}
	for _, c := range characters {
		names := append([]string{c.Name}, c.Aliases...)
		if povCharacter != "" && strings.EqualFold(c.Name, povCharacter) {
			names = append(names, povPronouns...)
		}
		for _, n := range dedupeNonEmpty(names) {
			e.characters = append(e.characters, entityPattern{
				canonical: c.Name,
				pattern:   regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(n) + `\b`),
			})
		}
	}
	for _, p := range places {
		e.places = append(e.places, entityPattern{
			canonical: p.Name,
			pattern:   regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(p.Name) + `\b`),
		})
	}
	return e, nil
}

// Extract returns the deduplicated, sorted canonical character and place
// names mentioned in text.
func (e *Extractor) Extract(text string) (characters []string, places []string) {
	characters = matchCanonical(e.characters, text)
	places = matchCanonical(e.places, text)
	return characters, places
}

func matchCanonical(patterns []entityPattern, text string) []string {
	seen := make(map[string]struct{})
	for _, p := range patterns {
		if p.pattern.MatchString(text) {
			seen[p.canonical] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func dedupeNonEmpty(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
