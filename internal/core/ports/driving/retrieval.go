package driving

import (
	"context"

	"github.com/deckbot-labs/deckindex-cli/internal/core/domain"
)

// RetrievalService serves queries through the cascading pipeline:
// parallel dense + sparse search, score-fusion merge, cross-encoder rerank.
type RetrievalService interface {
	// Search returns the final ranked results. It either returns a
	// fully-formed ranked list or an error - never a silently partial
	// list when one retrieval modality failed.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.MergedResult, error)

	// Stats reports record counts for both indexes.
	Stats(ctx context.Context) (map[domain.IndexKind]*StatsReport, error)
}

// StatsReport mirrors one index's statistics for display.
type StatsReport struct {
	// Name is the index name at the service.
	Name string

	// TotalRecords is the record count across all namespaces.
	TotalRecords int

	// Namespaces maps namespace name to record count.
	Namespaces map[string]int
}
