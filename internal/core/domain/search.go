package domain

// SearchOptions configures one cascading retrieval query.
type SearchOptions struct {
	// Namespace is the index partition to search. Defaults to
	// GlobalNamespace when empty.
	Namespace string

	// Filter restricts hits by filterable attribute, e.g.
	// {"company": {"$eq": "DB손해보험"}}. Nil means no filter.
	Filter map[string]any

	// TopK is how many candidates each index returns before merging.
	TopK int

	// RerankTopN is how many merged candidates go to the reranker and
	// therefore the maximum number of final results.
	RerankTopN int
}

// MergedResult is a deduplicated search hit carrying a fused score.
// It is transient: built fresh per query, never cached across queries.
type MergedResult struct {
	// ID is the record ID, unique within the merged set.
	ID string

	// Content is the record's indexed text.
	Content string

	// Score is the fused relevance score. After the rerank stage it is
	// the reranker's relevance score, which replaces the fusion score.
	Score float64

	// Attributes carries the record's filterable attributes as returned
	// by whichever index contributed the hit first.
	Attributes map[string]any
}
