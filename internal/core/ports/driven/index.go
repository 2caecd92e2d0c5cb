package driven

import (
	"context"

	"github.com/deckbot-labs/deckindex-cli/internal/core/domain"
)

// Index is one managed search index with integrated embedding. The service
// extracts each record's content field, embeds or tokenises it according to
// the index's model, and stores the remaining fields as filterable
// attributes. Two instances exist at runtime, one per domain.IndexKind.
type Index interface {
	// Kind identifies which retrieval modality this index provides.
	Kind() domain.IndexKind

	// Upsert writes records into the given namespace. Re-upserting an
	// existing ID overwrites in place, never duplicates. The batch must
	// respect the service's maximum batch size.
	Upsert(ctx context.Context, namespace string, records []domain.Record) error

	// Search runs a text query against the namespace and returns up to
	// topK hits ordered by the index's own relevance score. filter
	// restricts hits by attribute and may be nil.
	Search(ctx context.Context, namespace, query string, topK int, filter map[string]any) ([]Hit, error)

	// Stats returns per-namespace record counts.
	Stats(ctx context.Context) (*IndexStats, error)
}

// Hit is a single search result from one index. Transient: produced and
// consumed within one query's lifetime.
type Hit struct {
	// ID is the record ID.
	ID string

	// Content is the record's indexed text.
	Content string

	// Score is the index's relevance score.
	Score float64

	// Attributes carries the record's filterable attributes.
	Attributes map[string]any
}

// IndexStats summarises one index's contents.
type IndexStats struct {
	// Name is the index name at the service.
	Name string

	// TotalRecords is the record count across all namespaces.
	TotalRecords int

	// Namespaces maps namespace name to record count.
	Namespaces map[string]int
}
