package domain

import "errors"

// Sentinel errors forming MEMNON's error taxonomy. Components wrap these
// with fmt.Errorf("...: %w", ...) at the point of failure; callers branch
// on them with errors.Is.
var (
	// ErrConfiguration marks a startup-fatal misconfiguration: missing or
	// invalid settings, no vector capability, a corpus/IDF/embedding-table
	// mismatch. It is the only error that should bubble out of
	// initialization.
	ErrConfiguration = errors.New("memnon: configuration error")

	// ErrModelUnavailable marks an embedding or reranker model that failed
	// to load or was addressed while inactive. Logged and skipped; never
	// fatal.
	ErrModelUnavailable = errors.New("memnon: model unavailable")

	// ErrStorageError marks a database failure scoped to a single
	// strategy: connection lost, query failed, timeout exceeded.
	ErrStorageError = errors.New("memnon: storage error")

	// ErrEmptyInput marks empty or whitespace-only text passed where
	// content was required.
	ErrEmptyInput = errors.New("memnon: empty input")

	// ErrInvalidInput marks a malformed filter or argument, rejected
	// before any query executes.
	ErrInvalidInput = errors.New("memnon: invalid input")

	// ErrRerankFailure marks a cross-encoder failure; the fused candidates
	// pass through unchanged when this occurs.
	ErrRerankFailure = errors.New("memnon: rerank failure")

	// ErrEmbeddingFailed marks a transport or dimension-mismatch failure
	// from an otherwise-available embedding model (spec §4.1); distinct
	// from ErrModelUnavailable, which marks the model itself as
	// unreachable/inactive.
	ErrEmbeddingFailed = errors.New("memnon: embedding failed")
)
