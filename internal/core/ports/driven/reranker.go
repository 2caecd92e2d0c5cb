package driven

import "context"

// Reranker scores a small candidate set against the query with a
// cross-encoder model. This is the expensive second pass of cascading
// retrieval: the merged dense+sparse candidates go in, and the reranker's
// own ordering and relevance scores come out.
type Reranker interface {
	// Rerank scores documents against the query and returns the top
	// topN ranked descending by relevance. Callers must not invoke it
	// with zero documents.
	Rerank(ctx context.Context, query string, documents []RerankDocument, topN int) ([]RankedDocument, error)

	// ModelName returns the reranking model identifier for logging.
	ModelName() string
}

// RerankDocument is one candidate passed to the reranker.
type RerankDocument struct {
	// ID maps the result back to its MergedResult.
	ID string

	// Content is the text scored against the query.
	Content string
}

// RankedDocument is one reranked result.
type RankedDocument struct {
	// ID matches the candidate ID.
	ID string

	// Score is the cross-encoder relevance score.
	Score float64
}
