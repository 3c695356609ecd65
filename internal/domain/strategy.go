package domain

// QueryType is the closed set of query classifications the analyzer
// produces. Evaluated in this order when classifying (first match wins);
// the order itself is part of the contract, not just the set of values.
type QueryType string

const (
	QueryTypeCharacter    QueryType = "character"
	QueryTypeLocation     QueryType = "location"
	QueryTypeEvent        QueryType = "event"
	QueryTypeRelationship QueryType = "relationship"
	QueryTypeTheme        QueryType = "theme"
	QueryTypeGeneral      QueryType = "general"
	QueryTypeDirectID     QueryType = "direct_id"
)

// OrderedQueryTypes is the fixed evaluation order for first-match-wins
// classification. QueryTypeGeneral is the default when nothing matches and
// is deliberately absent here.
var OrderedQueryTypes = []QueryType{
	QueryTypeCharacter,
	QueryTypeLocation,
	QueryTypeEvent,
	QueryTypeRelationship,
	QueryTypeTheme,
}

// Source is the closed set of candidate origins.
type Source string

const (
	SourceVectorSearch   Source = "vector_search"
	SourceTextSearch     Source = "text_search"
	SourceHybridSearch   Source = "hybrid_search"
	SourceStructuredData Source = "structured_data"
	SourceDirectIDLookup Source = "direct_id_lookup"
)

// StrategyKind is a closed tagged variant naming the candidate-generation
// passes. The orchestrator does not switch on it: it picks its passes from
// the hybrid flag and the structured-data setting.
type StrategyKind string

const (
	StrategyVector     StrategyKind = "vector"
	StrategyText       StrategyKind = "text"
	StrategyStructured StrategyKind = "structured"
	StrategyHybrid     StrategyKind = "hybrid"
)

// Strategy names one candidate-generation pass the orchestrator will run.
// VectorWeight/TextWeight are only meaningful for StrategyHybrid.
type Strategy struct {
	Kind         StrategyKind
	VectorWeight float64
	TextWeight   float64
}

// ContentType is the closed set of Candidate payload kinds.
type ContentType string

const (
	ContentTypeNarrative ContentType = "narrative"
	ContentTypeCharacter ContentType = "character"
	ContentTypePlace     ContentType = "place"
)
