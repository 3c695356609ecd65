package analyzer

import (
	"strconv"
	"strings"

	"memnon/internal/domain"
	"memnon/internal/idf"
)

// Analyzer is the Query Analyzer component: it classifies a query,
// extracts entity mentions, scores temporal intent, and emits the
// stop-word-filtered stemmed keyword list, all without calling a model.
type Analyzer struct {
	classifier *Classifier
	extractor  *Extractor
}

// New builds an Analyzer from a type-pattern override set (nil/empty uses
// defaults) and a previously-constructed entity Extractor.
func New(typePatterns map[string][]string, extractor *Extractor) *Analyzer {
	return &Analyzer{
		classifier: NewClassifier(typePatterns),
		extractor:  extractor,
	}
}

// Analyze runs the full analysis pipeline over a raw query string. The
// reserved "chunk_id:<int>" prefix is handled by the orchestrator before
// this is ever called — a direct lookup never reaches the analyzer.
func (a *Analyzer) Analyze(text string) domain.QueryAnalysis {
	characters, places := a.extractor.Extract(text)
	return domain.QueryAnalysis{
		Type:           a.classifier.Classify(text),
		TemporalIntent: TemporalIntent(text),
		Keywords:       idf.Keywords(text),
		Characters:     characters,
		Places:         places,
	}
}

// IsChunkIDLookup reports whether text is the reserved direct-lookup
// prefix "chunk_id:<int>", and returns the parsed id.
func IsChunkIDLookup(text string) (id int64, ok bool) {
	const prefix = "chunk_id:"
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, prefix) {
		return 0, false
	}
	rest := strings.TrimSpace(strings.TrimPrefix(trimmed, prefix))
	parsed, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return 0, false
	}
	return parsed, true
}
