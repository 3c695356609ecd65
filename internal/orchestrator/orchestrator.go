// Package orchestrator implements query_memory, the Retrieval
// Orchestrator's single public operation: analyze, generate candidates
// across strategies, fuse, optionally temporally reweight, optionally
// rerank, and assemble diagnostics.
package orchestrator

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"memnon/internal/analyzer"
	"memnon/internal/config"
	"memnon/internal/domain"
	"memnon/internal/fusion"
)

// Analyzer is the subset of internal/analyzer.Analyzer the orchestrator
// needs.
type Analyzer interface {
	Analyze(text string) domain.QueryAnalysis
}

// ChunkLookup is the subset of internal/storage.Store needed for the
// reserved chunk_id:<int> short-circuit and temporal normalization.
type ChunkLookup interface {
	GetChunkByID(ctx context.Context, id int64) (domain.Candidate, bool, error)
	TotalChunks(ctx context.Context) (int64, error)
}

// VectorGenerator is the subset of internal/candidates.VectorGenerator
// the orchestrator needs.
type VectorGenerator interface {
	Generate(ctx context.Context, text string, filters domain.Filters, topK int) ([]domain.Candidate, error)
}

// TextGenerator is the subset of internal/candidates.TextGenerator the
// orchestrator needs.
type TextGenerator interface {
	Generate(ctx context.Context, text string, maxTerms int, filters domain.Filters, topK int) ([]domain.Candidate, error)
}

// HybridMerger is the subset of internal/storage.Store's MergeHybrid the
// orchestrator needs to combine independently-fetched vector and text
// candidate sets (spec.md §4.3 hybrid_search_multi_model), replacing the
// merge that used to happen ad hoc in this package.
type HybridMerger interface {
	MergeHybrid(ctx context.Context, vectorCands, textCands []domain.Candidate, weightedQuery, rawText string) []domain.Candidate
}

// QueryWeighter is the subset of internal/idf.Dictionary the orchestrator
// needs to rebuild the same IDF-weighted query the text generator used, so
// MergeHybrid can recompute a text score for vector-only hits consistently.
type QueryWeighter interface {
	WeightedQuery(text string, maxTerms int) string
}

// StructuredGenerator is the subset of internal/candidates.StructuredGenerator
// the orchestrator needs.
type StructuredGenerator interface {
	Generate(ctx context.Context, characters, places []string, limit int) ([]domain.Candidate, error)
}

// Reranker is the subset of internal/rerank.Reranker the orchestrator
// needs.
type Reranker interface {
	Rerank(ctx context.Context, query string, candidates []domain.Candidate, queryType domain.QueryType) []domain.Candidate
}

// Orchestrator wires every component into the single query_memory
// operation. It is stateless aside from its dependencies — safe for
// concurrent use, holds no per-call mutable state.
type Orchestrator struct {
	analyzer    Analyzer
	chunks      ChunkLookup
	vectorGen   VectorGenerator
	textGen     TextGenerator
	structGen   StructuredGenerator
	merger      HybridMerger
	weighter    QueryWeighter
	rareTerms   fusion.RareTermSource
	reranker    Reranker
	retrieval   config.RetrievalConfig
	idfMaxTerms int
}

// New builds an Orchestrator from its component dependencies.
func New(
	analyzer Analyzer,
	chunks ChunkLookup,
	vectorGen VectorGenerator,
	textGen TextGenerator,
	structGen StructuredGenerator,
	merger HybridMerger,
	weighter QueryWeighter,
	rareTerms fusion.RareTermSource,
	reranker Reranker,
	retrieval config.RetrievalConfig,
	idfMaxTerms int,
) *Orchestrator {
	return &Orchestrator{
		analyzer:    analyzer,
		chunks:      chunks,
		vectorGen:   vectorGen,
		textGen:     textGen,
		structGen:   structGen,
		merger:      merger,
		weighter:    weighter,
		rareTerms:   rareTerms,
		reranker:    reranker,
		retrieval:   retrieval,
		idfMaxTerms: idfMaxTerms,
	}
}

// QueryMemory runs the full retrieval pipeline for one query (spec.md
// §4.8). It never returns an error for a partial strategy failure —
// those degrade to zero candidates from that strategy and surface in
// Metadata.Errors. A failed direct chunk_id lookup likewise yields an
// empty result with the failure in Metadata.Errors.
func (o *Orchestrator) QueryMemory(ctx context.Context, q domain.Query) (domain.Result, error) {
	start := time.Now()
	traceID := uuid.NewString()

	if id, ok := analyzer.IsChunkIDLookup(q.Text); ok {
		cand, found, err := o.chunks.GetChunkByID(ctx, id)
		if err != nil {
			log.Warn().Err(err).Msg("query_memory: direct chunk lookup failed")
			metadata := ResultMetadata(traceID, nil, start, 0, 0, []string{"direct_id_lookup: " + err.Error()})
			metadata.FiltersApplied = q.Filters.Applied()
			return domain.Result{Query: q.Text, QueryType: domain.QueryTypeDirectID, Results: []domain.Candidate{}, Metadata: metadata}, nil
		}
		results := []domain.Candidate{}
		if found {
			results = append(results, cand)
		}
		metadata := ResultMetadata(traceID, []string{"direct_id_lookup"}, start, len(results), len(results), nil)
		metadata.FiltersApplied = q.Filters.Applied()
		return domain.Result{
			Query:     q.Text,
			QueryType: domain.QueryTypeDirectID,
			Results:   results,
			Metadata:  metadata,
		}, nil
	}

	analysis := o.analyzer.Analyze(q.Text)
	queryType := q.Type
	if queryType == "" {
		queryType = analysis.Type
	}

	topK := q.TopK
	if topK <= 0 {
		topK = o.retrieval.MaxResults
	}

	useHybrid := o.retrieval.HybridSearch.Enabled
	if q.UseHybrid != nil {
		useHybrid = useHybrid && *q.UseHybrid
	}

	vectorWeight, textWeight := fusion.WeightsForQueryType(o.retrieval.HybridSearch, queryType)
	if !useHybrid {
		vectorWeight, textWeight = 1, 0
	} else {
		vectorWeight, textWeight = fusion.AdjustForRareTerms(o.retrieval.HybridSearch, o.rareTerms, q.Text, vectorWeight, textWeight, queryType)
	}

	var (
		vectorCands, textCands, structCands []domain.Candidate
		strategiesUsed                      []string
		errs                                []string
		mu                                  sync.Mutex
	)
	fetchK := topK * 2

	grp, gctx := errgroup.WithContext(ctx)
	grp.Go(func() error {
		cands, err := o.vectorGen.Generate(gctx, q.Text, q.Filters, fetchK)
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			log.Warn().Err(err).Msg("query_memory: vector strategy failed")
			errs = append(errs, "vector_search: "+err.Error())
			return nil
		}
		vectorCands = cands
		strategiesUsed = append(strategiesUsed, "vector_search")
		return nil
	})
	if useHybrid {
		grp.Go(func() error {
			cands, err := o.textGen.Generate(gctx, q.Text, o.idfMaxTerms, q.Filters, fetchK)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Warn().Err(err).Msg("query_memory: text strategy failed")
				errs = append(errs, "text_search: "+err.Error())
				return nil
			}
			textCands = cands
			strategiesUsed = append(strategiesUsed, "text_search")
			return nil
		})
	}
	if o.retrieval.StructuredDataEnabled && (len(analysis.Characters) > 0 || len(analysis.Places) > 0) {
		grp.Go(func() error {
			cands, err := o.structGen.Generate(gctx, analysis.Characters, analysis.Places, topK)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Warn().Err(err).Msg("query_memory: structured strategy failed")
				errs = append(errs, "structured_data: "+err.Error())
				return nil
			}
			structCands = cands
			strategiesUsed = append(strategiesUsed, "structured_data")
			return nil
		})
	}
	_ = grp.Wait()

	var merged []domain.Candidate
	if useHybrid {
		weightedQuery := o.weighter.WeightedQuery(q.Text, o.idfMaxTerms)
		merged = o.merger.MergeHybrid(ctx, vectorCands, textCands, weightedQuery, q.Text)
	} else {
		merged = vectorCands
	}
	fused := fusion.Fuse(merged, vectorWeight, textWeight, o.retrieval.SourceWeights)
	fused = append(fused, structCands...)

	deduped := Dedup(fused)
	sort.SliceStable(deduped, func(i, j int) bool { return byScoreThenID(deduped[i], deduped[j]) })

	boostFactor := o.retrieval.HybridSearch.TemporalBoostFactor
	if o.retrieval.HybridSearch.UseQueryTypeTemporalFactors {
		if override, ok := o.retrieval.HybridSearch.TemporalBoostFactors[string(queryType)]; ok {
			boostFactor = override
		}
	}
	if boostFactor > 0 {
		if total, err := o.chunks.TotalChunks(ctx); err == nil && total > 0 {
			deduped = fusion.ReweightCandidates(deduped, total, analysis.TemporalIntent, boostFactor)
			sort.SliceStable(deduped, func(i, j int) bool { return byScoreThenID(deduped[i], deduped[j]) })
		}
	}

	// Truncate to topK only after the temporal booster has had the full
	// fetchK-sized pool to promote from (original's execute_time_aware_search:
	// fetch wide, boost, sort, then cut to top_k).
	if len(deduped) > topK {
		deduped = deduped[:topK]
	}

	if o.retrieval.CrossEncoderReranking.Enabled && len(deduped) > 0 && o.reranker != nil {
		deduped = o.reranker.Rerank(ctx, q.Text, deduped, queryType)
	}

	totalCandidates := len(vectorCands) + len(textCands) + len(structCands)
	metadata := ResultMetadata(traceID, strategiesUsed, start, totalCandidates, len(deduped), errs)
	metadata.FiltersApplied = q.Filters.Applied()
	return domain.Result{
		Query:     q.Text,
		QueryType: queryType,
		Results:   deduped,
		Metadata:  metadata,
	}, nil
}

// byScoreThenID orders candidates by score descending, breaking ties by
// ID ascending so equal scores rank deterministically.
func byScoreThenID(a, b domain.Candidate) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.ID < b.ID
}

// ResultMetadata assembles the diagnostics block.
func ResultMetadata(traceID string, strategies []string, start time.Time, totalCandidates, finalCount int, errs []string) domain.ResultMetadata {
	return domain.ResultMetadata{
		SearchStrategies: strategies,
		SearchStats: domain.SearchStats{
			QueryTimeMS:           time.Since(start).Milliseconds(),
			TotalCandidateResults: totalCandidates,
			FinalResultCount:      finalCount,
			StrategiesUsed:        strategies,
		},
		ResultCount: finalCount,
		Errors:      errs,
		TraceID:     traceID,
	}
}
