package driving

import (
	"context"

	"github.com/deckbot-labs/deckindex-cli/internal/core/domain"
)

// IngestService normalises decks into records and dispatches them to every
// (index, namespace) target.
type IngestService interface {
	// Ingest runs the full pipeline for one deck: sanitize ID, build
	// records, validate, batch, dispatch. Input-shape errors
	// (domain.ErrMalformedInput, *domain.ValidationError) abort before
	// any network call. Individual upsert failures do not: they are
	// aggregated into the returned report.
	Ingest(ctx context.Context, deck domain.Deck) (*domain.UpsertReport, error)

	// Prepare runs everything up to (not including) dispatch and returns
	// the document ID, the validated batches, and whether the ID came
	// from the timestamp fallback. Used by the transform command to
	// write batch files without touching the network.
	Prepare(deck domain.Deck) (*Prepared, error)

	// Dispatch uploads an already-prepared deck to every target.
	// Ingest is equivalent to Prepare followed by Dispatch; callers
	// that need the Prepared output (manifests, batch files) use the
	// two-step form.
	Dispatch(ctx context.Context, prepared *Prepared) (*domain.UpsertReport, error)

	// Redispatch re-runs only the failed (batch, target) pairs of a
	// previous report against freshly prepared batches.
	Redispatch(ctx context.Context, deck domain.Deck, previous domain.UpsertReport) (*domain.UpsertReport, error)
}

// Prepared is the output of the ingestion pipeline's offline stages.
type Prepared struct {
	// DocumentID is the sanitized document key.
	DocumentID string

	// FallbackID is true when the key came from the timestamp fallback.
	FallbackID bool

	// Records is the full validated record sequence.
	Records []domain.Record

	// Batches partitions Records without reordering.
	Batches [][]domain.Record
}
