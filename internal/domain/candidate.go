package domain

// Candidate is the single typed shape every generator, fusion step, and
// the reranker produce and consume. Per-source sub-scores and diagnostic
// fields are explicit optional fields (pointers or nil maps), never an
// untyped map[string]any bag.
type Candidate struct {
	ID          string
	ChunkID     *int64
	ContentType ContentType
	Text        string
	Metadata    map[string]any
	Source      Source

	VectorScore *float64
	TextScore   *float64
	ModelScores map[string]float64

	Score float64 // final aggregated score in [0,1]; the only field every Candidate has.

	RerankerScore    *float64
	OriginalScore    *float64
	TemporalPosition *float64
}

// WithScore returns a copy of c with Score replaced. Kept as a value
// method (not a pointer mutator) so fusion/dedup code can reason about
// Candidates as immutable values passed through a pipeline of pure
// functions.
func (c Candidate) WithScore(score float64) Candidate {
	c.Score = score
	return c
}

// SearchStats mirrors the metadata.search_stats object in the public
// response shape.
type SearchStats struct {
	QueryTimeMS           int64
	TotalCandidateResults int
	FinalResultCount      int
	StrategiesUsed        []string
	RerankTimeMS          *int64
}

// ResultMetadata mirrors the metadata object in the public response shape.
type ResultMetadata struct {
	SearchStrategies []string
	SearchStats      SearchStats
	ResultCount      int
	FiltersApplied   map[string]any
	Errors           []string // non-fatal per-strategy failures, for diagnostics
	TraceID          string
}

// Result is the final output of a single query_memory call.
type Result struct {
	Query     string
	QueryType QueryType
	Results   []Candidate
	Metadata  ResultMetadata
}
