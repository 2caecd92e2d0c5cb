package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/deckbot-labs/deckindex-cli/internal/core/domain"
	"github.com/deckbot-labs/deckindex-cli/internal/core/ports/driven"
	"github.com/deckbot-labs/deckindex-cli/internal/core/ports/driving"
	"github.com/deckbot-labs/deckindex-cli/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// Retrieval defaults.
const (
	// DefaultTopK is how many candidates each index contributes.
	DefaultTopK = 20

	// DefaultRerankTopN is how many merged candidates are reranked.
	DefaultRerankTopN = 5
)

// RetrievalConfig holds the query defaults applied when SearchOptions leave
// them unset. The zero value falls back to the package constants.
type RetrievalConfig struct {
	// TopK is the default per-index candidate count.
	TopK int

	// RerankTopN is the default rerank candidate count.
	RerankTopN int
}

// RetrievalService is the cascading retrieval engine: parallel dense +
// sparse fan-out, mean-fusion merge keyed by record ID, and a final
// cross-encoder rerank pass.
type RetrievalService struct {
	dense    driven.Index
	sparse   driven.Index
	reranker driven.Reranker
	cfg      RetrievalConfig
}

// NewRetrievalService creates the retrieval engine. All three collaborators
// are required: the engine has no single-modality or no-rerank fallback.
func NewRetrievalService(dense, sparse driven.Index, reranker driven.Reranker, cfg RetrievalConfig) (*RetrievalService, error) {
	if dense == nil || sparse == nil {
		return nil, fmt.Errorf("%w: both dense and sparse indexes are required", domain.ErrIndexUnavailable)
	}
	if reranker == nil {
		return nil, fmt.Errorf("%w: reranker is required", domain.ErrRerankerUnavailable)
	}
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	if cfg.RerankTopN <= 0 {
		cfg.RerankTopN = DefaultRerankTopN
	}
	return &RetrievalService{dense: dense, sparse: sparse, reranker: reranker, cfg: cfg}, nil
}

// Search runs the four-stage pipeline. Either fan-out failure fails the
// whole query: presenting results from one modality as if they were the
// merged ranking would mislead, so there is no partial-result fallback.
func (s *RetrievalService) Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.MergedResult, error) {
	logger.Section("Cascading Search")

	query = strings.TrimSpace(query)
	if query == "" {
		logger.Debug("Empty query, returning no results")
		return []domain.MergedResult{}, nil
	}

	namespace := opts.Namespace
	if namespace == "" {
		namespace = domain.GlobalNamespace
	}
	topK := opts.TopK
	if topK <= 0 {
		topK = s.cfg.TopK
	}
	rerankTopN := opts.RerankTopN
	if rerankTopN <= 0 {
		rerankTopN = s.cfg.RerankTopN
	}
	logger.Debug("Query: %q namespace=%s topK=%d rerankTopN=%d filter=%v",
		query, namespace, topK, rerankTopN, opts.Filter)

	// Stage 1: fan-out. The two searches are order-independent and run
	// concurrently for latency; merging waits for both.
	var denseHits, sparseHits []driven.Hit
	var denseErr, sparseErr error

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		denseHits, denseErr = s.dense.Search(ctx, namespace, query, topK, opts.Filter)
	}()
	go func() {
		defer wg.Done()
		sparseHits, sparseErr = s.sparse.Search(ctx, namespace, query, topK, opts.Filter)
	}()
	wg.Wait()

	if denseErr != nil {
		return nil, &domain.RetrievalError{Kind: domain.IndexDense, Err: denseErr}
	}
	if sparseErr != nil {
		return nil, &domain.RetrievalError{Kind: domain.IndexSparse, Err: sparseErr}
	}
	logger.Debug("Fan-out: %d dense hits, %d sparse hits", len(denseHits), len(sparseHits))

	// Stages 2-4: merge, sort, rerank.
	merged := mergeHits(denseHits, sparseHits)
	logger.Debug("Merged to %d unique results", len(merged))

	if len(merged) == 0 {
		// Never call the reranker with zero documents.
		return []domain.MergedResult{}, nil
	}

	return s.rerank(ctx, query, merged, rerankTopN)
}

// mergeHits deduplicates hits by ID with mean score fusion. Dense hits go
// in first with their score and attributes; a sparse hit for an ID already
// present replaces the score with the arithmetic mean of the two and leaves
// the attributes alone, otherwise it is inserted as-is. Merging is
// idempotent over the input pair: feeding the same two lists again yields
// the same set.
//
// The result is sorted by fused score descending with a stable sort, so
// ties keep insertion order (dense hits before sparse-only hits). That
// tie-break is a documented policy, not an accident: changing it would
// change which results survive rerank truncation.
func mergeHits(dense, sparse []driven.Hit) []domain.MergedResult {
	byID := make(map[string]int, len(dense)+len(sparse))
	results := make([]domain.MergedResult, 0, len(dense)+len(sparse))

	for _, hit := range dense {
		if _, ok := byID[hit.ID]; ok {
			continue // index returned a duplicate; first occurrence wins
		}
		byID[hit.ID] = len(results)
		results = append(results, domain.MergedResult{
			ID:         hit.ID,
			Content:    hit.Content,
			Score:      hit.Score,
			Attributes: hit.Attributes,
		})
	}

	for _, hit := range sparse {
		if i, ok := byID[hit.ID]; ok {
			results[i].Score = (results[i].Score + hit.Score) / 2
			continue
		}
		byID[hit.ID] = len(results)
		results = append(results, domain.MergedResult{
			ID:         hit.ID,
			Content:    hit.Content,
			Score:      hit.Score,
			Attributes: hit.Attributes,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	return results
}

// rerank sends the top candidates to the cross-encoder and rebuilds the
// result list in the reranker's order, with the reranker's relevance score
// replacing the fused score.
func (s *RetrievalService) rerank(ctx context.Context, query string, merged []domain.MergedResult, topN int) ([]domain.MergedResult, error) {
	if topN > len(merged) {
		topN = len(merged)
	}
	candidates := merged[:topN]

	docs := make([]driven.RerankDocument, len(candidates))
	for i, c := range candidates {
		docs[i] = driven.RerankDocument{ID: c.ID, Content: c.Content}
	}

	logger.Debug("Reranking %d candidates with %s", len(docs), s.reranker.ModelName())
	ranked, err := s.reranker.Rerank(ctx, query, docs, topN)
	if err != nil {
		return nil, fmt.Errorf("rerank: %w", err)
	}

	byID := make(map[string]domain.MergedResult, len(candidates))
	for _, c := range candidates {
		byID[c.ID] = c
	}

	final := make([]domain.MergedResult, 0, len(ranked))
	for _, r := range ranked {
		result, ok := byID[r.ID]
		if !ok {
			return nil, fmt.Errorf("rerank: unknown document ID %q in response", r.ID)
		}
		result.Score = r.Score
		final = append(final, result)
	}

	logger.Info("Search complete: %d results", len(final))
	return final, nil
}

// Stats reports record counts for both indexes.
func (s *RetrievalService) Stats(ctx context.Context) (map[domain.IndexKind]*driving.StatsReport, error) {
	reports := make(map[domain.IndexKind]*driving.StatsReport, 2)

	for _, index := range []driven.Index{s.dense, s.sparse} {
		stats, err := index.Stats(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s index stats: %w", index.Kind(), err)
		}
		reports[index.Kind()] = &driving.StatsReport{
			Name:         stats.Name,
			TotalRecords: stats.TotalRecords,
			Namespaces:   stats.Namespaces,
		}
	}

	return reports, nil
}
