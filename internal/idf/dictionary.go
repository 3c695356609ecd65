// Package idf builds and serves a corpus-wide inverse-document-frequency
// table over stemmed tokens, used to weight full-text search queries
// against the narrative corpus.
//
// Grounded on original_source/nexus/agents/memnon/utils/idf_dictionary.py:
// same IDF formula, same weighted-query narrowing rule, same weight-class
// thresholds. Stemming is github.com/blevesearch/snowballstem rather than
// the Python snowballstemmer package it mirrors.
package idf

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// ChunkSource is the minimal read the dictionary needs from the storage
// adapter to build itself: the raw text of every chunk in the corpus. It
// is declared here, not in internal/storage, so this package has no
// dependency on pgx/pgvector — storage implements it.
type ChunkSource interface {
	AllChunkTexts(ctx context.Context) (<-chan string, error)
}

// Dictionary is the in-memory, read-only-after-load IDF table.
type Dictionary struct {
	mu        sync.RWMutex
	docFreq   map[string]int
	totalDocs int
	builtAt   time.Time
	maxTerms  int
}

// WeightClass is the closed {A,B,C,D} bucket a term's IDF falls into.
type WeightClass string

const (
	WeightClassA WeightClass = "A"
	WeightClassB WeightClass = "B"
	WeightClassC WeightClass = "C"
	WeightClassD WeightClass = "D"
)

// New constructs an empty Dictionary; callers populate it via Load or
// Build before using it for lookups.
func New(maxTerms int) *Dictionary {
	if maxTerms <= 0 {
		maxTerms = 12
	}
	return &Dictionary{
		docFreq:  make(map[string]int),
		maxTerms: maxTerms,
	}
}

// Build scans the full corpus once via src, counting document frequency
// per stemmed token, and replaces the dictionary's contents in place.
// log(N/(df+1)) is computed lazily at lookup time from docFreq/totalDocs
// rather than cached per term, since totalDocs is fixed once a build
// completes.
func (d *Dictionary) Build(ctx context.Context, src ChunkSource) error {
	texts, err := src.AllChunkTexts(ctx)
	if err != nil {
		return err
	}

	freq := make(map[string]int)
	total := 0
	for text := range texts {
		total++
		seen := make(map[string]struct{})
		for _, tok := range tokenize(text) {
			if _, dup := seen[tok]; dup {
				continue
			}
			seen[tok] = struct{}{}
			freq[tok]++
		}
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	d.mu.Lock()
	d.docFreq = freq
	d.totalDocs = total
	d.builtAt = time.Now()
	d.mu.Unlock()

	log.Info().Int("total_docs", total).Int("vocab_size", len(freq)).Msg("idf dictionary built")
	return nil
}

// IDF returns the inverse document frequency for a term, 1.0 for an
// unknown term (matching spec's explicit default for unseen tokens).
func (d *Dictionary) IDF(term string) float64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.idfLocked(stem(term))
}

func (d *Dictionary) idfLocked(stemmed string) float64 {
	if d.totalDocs == 0 {
		return 1.0
	}
	df, ok := d.docFreq[stemmed]
	if !ok {
		return 1.0
	}
	return math.Log(float64(d.totalDocs) / float64(df+1))
}

// WeightClass buckets a term's IDF into {A,B,C,D}: A>2.5, B>2.0, C>1.0,
// else D.
func (d *Dictionary) WeightClass(term string) WeightClass {
	v := d.IDF(term)
	switch {
	case v > 2.5:
		return WeightClassA
	case v > 2.0:
		return WeightClassB
	case v > 1.0:
		return WeightClassC
	default:
		return WeightClassD
	}
}

// BuiltAt reports when the dictionary's contents were last (re)built, or
// the build time recorded in the cache file it was loaded from.
func (d *Dictionary) BuiltAt() time.Time {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.builtAt
}

// Empty reports whether the dictionary has never been built or loaded.
func (d *Dictionary) Empty() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.totalDocs == 0
}
