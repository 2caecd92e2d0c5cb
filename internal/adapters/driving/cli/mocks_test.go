package cli

import (
	"context"
	"fmt"

	"github.com/deckbot-labs/deckindex-cli/internal/core/domain"
	"github.com/deckbot-labs/deckindex-cli/internal/core/ports/driving"
)

// mockIngestService implements driving.IngestService for command tests.
type mockIngestService struct {
	prepareErr  error
	dispatchErr error
	report      *domain.UpsertReport
	redispatch  *domain.UpsertReport

	dispatched   int
	redispatched int
}

func (m *mockIngestService) Prepare(deck domain.Deck) (*driving.Prepared, error) {
	if m.prepareErr != nil {
		return nil, m.prepareErr
	}
	docID, fallback := domain.SanitizeDocumentID(deck.Metadata.Filename)
	records, err := domain.BuildRecords(docID, deck)
	if err != nil {
		return nil, err
	}
	batches, err := domain.BatchRecords(records, domain.DefaultMaxBatchSize)
	if err != nil {
		return nil, err
	}
	return &driving.Prepared{
		DocumentID: docID,
		FallbackID: fallback,
		Records:    records,
		Batches:    batches,
	}, nil
}

func (m *mockIngestService) Dispatch(_ context.Context, prepared *driving.Prepared) (*domain.UpsertReport, error) {
	m.dispatched++
	if m.dispatchErr != nil {
		return nil, m.dispatchErr
	}
	if m.report != nil {
		return m.report, nil
	}
	ops := len(prepared.Batches) * 4
	return &domain.UpsertReport{
		DocumentID:      prepared.DocumentID,
		TotalOperations: ops,
		Succeeded:       ops,
	}, nil
}

func (m *mockIngestService) Ingest(ctx context.Context, deck domain.Deck) (*domain.UpsertReport, error) {
	prepared, err := m.Prepare(deck)
	if err != nil {
		return nil, err
	}
	return m.Dispatch(ctx, prepared)
}

func (m *mockIngestService) Redispatch(_ context.Context, _ domain.Deck, previous domain.UpsertReport) (*domain.UpsertReport, error) {
	m.redispatched++
	if m.redispatch != nil {
		return m.redispatch, nil
	}
	return &domain.UpsertReport{
		DocumentID: previous.DocumentID,
		Succeeded:  len(previous.Failures),
	}, nil
}

// mockRetrievalService implements driving.RetrievalService for command tests.
type mockRetrievalService struct {
	results  []domain.MergedResult
	stats    map[domain.IndexKind]*driving.StatsReport
	err      error
	lastOpts domain.SearchOptions
}

func (m *mockRetrievalService) Search(_ context.Context, _ string, opts domain.SearchOptions) ([]domain.MergedResult, error) {
	m.lastOpts = opts
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}

func (m *mockRetrievalService) Stats(context.Context) (map[domain.IndexKind]*driving.StatsReport, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.stats, nil
}

// mockManifestStore implements driven.ManifestStore for command tests.
type mockManifestStore struct {
	saved     []domain.Manifest
	manifests map[string]domain.Manifest
}

func (m *mockManifestStore) Save(_ context.Context, manifest domain.Manifest) error {
	m.saved = append(m.saved, manifest)
	return nil
}

func (m *mockManifestStore) Get(_ context.Context, documentID string) (*domain.Manifest, error) {
	manifest, ok := m.manifests[documentID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, documentID)
	}
	return &manifest, nil
}

func (m *mockManifestStore) List(context.Context) ([]domain.Manifest, error) {
	var all []domain.Manifest
	for _, manifest := range m.manifests {
		all = append(all, manifest)
	}
	return all, nil
}

func (m *mockManifestStore) Close() error {
	return nil
}

// setupTestServices wires mock services and returns a cleanup that restores
// the previous wiring.
func setupTestServices() (*mockIngestService, *mockRetrievalService, *mockManifestStore, func()) {
	oldIngest, oldRetrieval, oldManifests := ingestService, retrievalService, manifestStore

	ingest := &mockIngestService{}
	retrieval := &mockRetrievalService{}
	manifests := &mockManifestStore{manifests: make(map[string]domain.Manifest)}
	SetServices(ingest, retrieval, manifests)

	return ingest, retrieval, manifests, func() {
		ingestService, retrievalService, manifestStore = oldIngest, oldRetrieval, oldManifests
	}
}
