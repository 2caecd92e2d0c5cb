package mcp

import (
	"context"

	"github.com/deckbot-labs/deckindex-cli/internal/core/domain"
	"github.com/deckbot-labs/deckindex-cli/internal/core/ports/driving"
)

// mockRetrievalService implements driving.RetrievalService for tests.
type mockRetrievalService struct {
	results  []domain.MergedResult
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
	return nil, nil
}

// mockIngestService implements driving.IngestService for tests.
type mockIngestService struct {
	report   *domain.UpsertReport
	err      error
	lastDeck domain.Deck
}

func (m *mockIngestService) Ingest(_ context.Context, deck domain.Deck) (*domain.UpsertReport, error) {
	m.lastDeck = deck
	if m.err != nil {
		return nil, m.err
	}
	return m.report, nil
}

func (m *mockIngestService) Prepare(domain.Deck) (*driving.Prepared, error) {
	return nil, nil
}

func (m *mockIngestService) Dispatch(context.Context, *driving.Prepared) (*domain.UpsertReport, error) {
	return nil, nil
}

func (m *mockIngestService) Redispatch(context.Context, domain.Deck, domain.UpsertReport) (*domain.UpsertReport, error) {
	return nil, nil
}

// mockManifestStore implements driven.ManifestStore for tests.
type mockManifestStore struct {
	manifests []domain.Manifest
	err       error
}

func (m *mockManifestStore) Save(context.Context, domain.Manifest) error {
	return m.err
}

func (m *mockManifestStore) Get(_ context.Context, documentID string) (*domain.Manifest, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.manifests {
		if m.manifests[i].DocumentID == documentID {
			return &m.manifests[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockManifestStore) List(context.Context) ([]domain.Manifest, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.manifests, nil
}

func (m *mockManifestStore) Close() error {
	return nil
}
