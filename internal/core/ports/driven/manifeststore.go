package driven

import (
	"context"

	"github.com/deckbot-labs/deckindex-cli/internal/core/domain"
)

// ManifestStore persists per-document ingestion manifests and their upsert
// reports. Manifests record what was dispatched and which (batch, target)
// pairs failed, so an operator can re-dispatch without rebuilding records.
type ManifestStore interface {
	// Save creates or replaces the manifest for a document.
	Save(ctx context.Context, manifest domain.Manifest) error

	// Get retrieves the most recent manifest for a document ID.
	// Returns domain.ErrNotFound if the document was never ingested.
	Get(ctx context.Context, documentID string) (*domain.Manifest, error)

	// List returns all manifests, most recent first.
	List(ctx context.Context) ([]domain.Manifest, error)

	// Close releases resources.
	Close() error
}
