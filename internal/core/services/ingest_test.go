package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deckbot-labs/deckindex-cli/internal/core/domain"
	"github.com/deckbot-labs/deckindex-cli/internal/core/ports/driven"
)

// --- Mock implementations ---

// upsertCall records one Upsert invocation.
type upsertCall struct {
	kind      domain.IndexKind
	namespace string
	count     int
}

// mockIndex implements driven.Index for testing.
type mockIndex struct {
	kind  domain.IndexKind
	calls []upsertCall

	// failOn makes Upsert fail for a namespace; failAlways fails every call.
	failOn     string
	failAlways bool

	hits      []driven.Hit
	searchErr error

	stats    *driven.IndexStats
	statsErr error
}

func (m *mockIndex) Kind() domain.IndexKind { return m.kind }

func (m *mockIndex) Upsert(_ context.Context, namespace string, records []domain.Record) error {
	m.calls = append(m.calls, upsertCall{kind: m.kind, namespace: namespace, count: len(records)})
	if m.failAlways || (m.failOn != "" && namespace == m.failOn) {
		return fmt.Errorf("upsert rejected for %s", namespace)
	}
	return nil
}

func (m *mockIndex) Search(_ context.Context, _, _ string, topK int, _ map[string]any) ([]driven.Hit, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if topK > len(m.hits) {
		return m.hits, nil
	}
	return m.hits[:topK], nil
}

func (m *mockIndex) Stats(_ context.Context) (*driven.IndexStats, error) {
	if m.statsErr != nil {
		return nil, m.statsErr
	}
	if m.stats != nil {
		return m.stats, nil
	}
	return &driven.IndexStats{Name: string(m.kind)}, nil
}

// --- Test helpers ---

// fastConfig disables pacing so tests do not sleep.
func fastConfig() IngestConfig {
	return IngestConfig{MaxBatchSize: domain.DefaultMaxBatchSize}
}

func testDeck(slides int) domain.Deck {
	deck := domain.Deck{
		Metadata: domain.DeckMetadata{
			Filename:         "DB (Insurance) 2025.pdf",
			Company:          "DB손해보험",
			Industry:         "insurance",
			ExecutiveSummary: "Campaign strategy.",
			TotalPages:       slides,
		},
	}
	for i := 1; i <= slides; i++ {
		deck.Slides = append(deck.Slides, domain.Slide{
			Number:   i,
			Summary:  fmt.Sprintf("Slide %d summary", i),
			Keywords: []string{"campaign"},
		})
	}
	return deck
}

func newTestIngest(t *testing.T, dense, sparse *mockIndex, cfg IngestConfig) *IngestService {
	t.Helper()
	service, err := NewIngestService(dense, sparse, cfg)
	require.NoError(t, err)
	return service
}

// --- Tests ---

func TestNewIngestService_RequiresIndexes(t *testing.T) {
	_, err := NewIngestService(nil, &mockIndex{kind: domain.IndexSparse}, fastConfig())
	assert.ErrorIs(t, err, domain.ErrIndexUnavailable)

	_, err = NewIngestService(&mockIndex{kind: domain.IndexDense}, nil, fastConfig())
	assert.ErrorIs(t, err, domain.ErrIndexUnavailable)
}

func TestNewIngestService_RejectsBadBatchSize(t *testing.T) {
	cfg := fastConfig()
	cfg.MaxBatchSize = 0

	_, err := NewIngestService(&mockIndex{kind: domain.IndexDense}, &mockIndex{kind: domain.IndexSparse}, cfg)

	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestIngestService_Prepare(t *testing.T) {
	service := newTestIngest(t, &mockIndex{kind: domain.IndexDense}, &mockIndex{kind: domain.IndexSparse}, fastConfig())

	prepared, err := service.Prepare(testDeck(2))

	require.NoError(t, err)
	assert.Equal(t, "db_insurance_2025", prepared.DocumentID)
	assert.False(t, prepared.FallbackID)
	assert.Len(t, prepared.Records, 3)
	assert.Len(t, prepared.Batches, 1)
}

func TestIngestService_Prepare_FallbackID(t *testing.T) {
	service := newTestIngest(t, &mockIndex{kind: domain.IndexDense}, &mockIndex{kind: domain.IndexSparse}, fastConfig())

	deck := testDeck(1)
	deck.Metadata.Filename = "기업소개.pdf"

	prepared, err := service.Prepare(deck)

	require.NoError(t, err)
	assert.True(t, prepared.FallbackID)
}

func TestIngestService_Prepare_MalformedSlide(t *testing.T) {
	service := newTestIngest(t, &mockIndex{kind: domain.IndexDense}, &mockIndex{kind: domain.IndexSparse}, fastConfig())

	deck := testDeck(2)
	deck.Slides[1].Number = 0

	_, err := service.Prepare(deck)

	assert.ErrorIs(t, err, domain.ErrMalformedInput)
}

func TestIngestService_Prepare_ValidationFailClosed(t *testing.T) {
	service := newTestIngest(t, &mockIndex{kind: domain.IndexDense}, &mockIndex{kind: domain.IndexSparse}, fastConfig())

	// A slide with no content fields at all builds an empty-content record.
	deck := testDeck(2)
	deck.Slides[0] = domain.Slide{Number: 1}

	_, err := service.Prepare(deck)

	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Len(t, validationErr.Failures, 1)
	assert.Equal(t, "db_insurance_2025_slide_001", validationErr.Failures[0].RecordID)
}

func TestIngestService_Ingest_AllTargets(t *testing.T) {
	dense := &mockIndex{kind: domain.IndexDense}
	sparse := &mockIndex{kind: domain.IndexSparse}
	service := newTestIngest(t, dense, sparse, fastConfig())

	report, err := service.Ingest(context.Background(), testDeck(2))

	require.NoError(t, err)
	assert.Equal(t, 4, report.TotalOperations) // 1 batch x 4 targets
	assert.Equal(t, 4, report.Succeeded)
	assert.Equal(t, 0, report.Failed)
	assert.True(t, report.Complete())

	// Each index saw both its namespaces, doc namespace first.
	require.Len(t, dense.calls, 2)
	assert.Equal(t, "doc:db_insurance_2025", dense.calls[0].namespace)
	assert.Equal(t, "global", dense.calls[1].namespace)
	require.Len(t, sparse.calls, 2)
	assert.Equal(t, "doc:db_insurance_2025", sparse.calls[0].namespace)
	assert.Equal(t, "global", sparse.calls[1].namespace)
}

func TestIngestService_Dispatch_MatchesIngest(t *testing.T) {
	// Prepare followed by Dispatch is the two-step form of Ingest.
	dense := &mockIndex{kind: domain.IndexDense}
	sparse := &mockIndex{kind: domain.IndexSparse}
	service := newTestIngest(t, dense, sparse, fastConfig())

	prepared, err := service.Prepare(testDeck(2))
	require.NoError(t, err)
	assert.Len(t, dense.calls, 0, "prepare makes no calls")

	report, err := service.Dispatch(context.Background(), prepared)

	require.NoError(t, err)
	assert.Equal(t, prepared.DocumentID, report.DocumentID)
	assert.Equal(t, 4, report.TotalOperations)
	assert.True(t, report.Complete())
}

func TestIngestService_Ingest_TargetOrderGroupsTraffic(t *testing.T) {
	// With multiple batches, all of one target's batches go out before
	// the next target is touched.
	dense := &mockIndex{kind: domain.IndexDense}
	sparse := &mockIndex{kind: domain.IndexSparse}
	cfg := fastConfig()
	cfg.MaxBatchSize = 2 // 3 records -> 2 batches
	service := newTestIngest(t, dense, sparse, cfg)

	report, err := service.Ingest(context.Background(), testDeck(2))

	require.NoError(t, err)
	assert.Equal(t, 8, report.TotalOperations) // 2 batches x 4 targets

	require.Len(t, dense.calls, 4)
	assert.Equal(t, "doc:db_insurance_2025", dense.calls[0].namespace)
	assert.Equal(t, "doc:db_insurance_2025", dense.calls[1].namespace)
	assert.Equal(t, "global", dense.calls[2].namespace)
	assert.Equal(t, "global", dense.calls[3].namespace)
	assert.Equal(t, 2, dense.calls[0].count)
	assert.Equal(t, 1, dense.calls[1].count)
}

func TestIngestService_Ingest_PartialFailureContinues(t *testing.T) {
	dense := &mockIndex{kind: domain.IndexDense, failOn: "global"}
	sparse := &mockIndex{kind: domain.IndexSparse}
	service := newTestIngest(t, dense, sparse, fastConfig())

	report, err := service.Ingest(context.Background(), testDeck(2))

	require.NoError(t, err, "call-level failures must not fail the run")
	assert.Equal(t, 4, report.TotalOperations)
	assert.Equal(t, 3, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	assert.False(t, report.Complete())

	require.Len(t, report.Failures, 1)
	assert.Equal(t, 0, report.Failures[0].BatchIndex)
	assert.Equal(t, domain.Target{Kind: domain.IndexDense, Namespace: "global"}, report.Failures[0].Target)

	// Sparse targets still ran after the dense failure.
	assert.Len(t, sparse.calls, 2)
}

func TestIngestService_Ingest_NoNetworkOnValidationError(t *testing.T) {
	dense := &mockIndex{kind: domain.IndexDense}
	sparse := &mockIndex{kind: domain.IndexSparse}
	service := newTestIngest(t, dense, sparse, fastConfig())

	deck := testDeck(1)
	deck.Slides[0] = domain.Slide{Number: 1} // empty content

	_, err := service.Ingest(context.Background(), deck)

	require.Error(t, err)
	assert.Empty(t, dense.calls, "fail-closed: no upsert calls after validation failure")
	assert.Empty(t, sparse.calls)
}

func TestIngestService_Ingest_Cancelled(t *testing.T) {
	dense := &mockIndex{kind: domain.IndexDense}
	sparse := &mockIndex{kind: domain.IndexSparse}
	service := newTestIngest(t, dense, sparse, fastConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := service.Ingest(ctx, testDeck(1))

	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, report, "no partially mutated report on cancellation")
}

func TestIngestService_Redispatch_OnlyFailedPairs(t *testing.T) {
	dense := &mockIndex{kind: domain.IndexDense}
	sparse := &mockIndex{kind: domain.IndexSparse}
	service := newTestIngest(t, dense, sparse, fastConfig())

	previous := domain.UpsertReport{
		DocumentID:      "db_insurance_2025",
		TotalOperations: 4,
		Succeeded:       3,
		Failed:          1,
		Failures: []domain.UpsertFailure{
			{BatchIndex: 0, Target: domain.Target{Kind: domain.IndexSparse, Namespace: "global"}, Reason: "timeout"},
		},
	}

	report, err := service.Redispatch(context.Background(), testDeck(2), previous)

	require.NoError(t, err)
	assert.Equal(t, 1, report.TotalOperations)
	assert.Equal(t, 1, report.Succeeded)
	assert.Empty(t, dense.calls, "succeeded pairs are not replayed")
	require.Len(t, sparse.calls, 1)
	assert.Equal(t, "global", sparse.calls[0].namespace)
}

func TestIngestService_Redispatch_NothingToDo(t *testing.T) {
	dense := &mockIndex{kind: domain.IndexDense}
	sparse := &mockIndex{kind: domain.IndexSparse}
	service := newTestIngest(t, dense, sparse, fastConfig())

	report, err := service.Redispatch(context.Background(), testDeck(1), domain.UpsertReport{DocumentID: "db_insurance_2025"})

	require.NoError(t, err)
	assert.Equal(t, 0, report.TotalOperations)
	assert.Empty(t, dense.calls)
	assert.Empty(t, sparse.calls)
}

func TestIngestService_Redispatch_DocumentMismatch(t *testing.T) {
	service := newTestIngest(t, &mockIndex{kind: domain.IndexDense}, &mockIndex{kind: domain.IndexSparse}, fastConfig())

	previous := domain.UpsertReport{
		DocumentID: "some_other_deck",
		Failures:   []domain.UpsertFailure{{BatchIndex: 0}},
	}

	_, err := service.Redispatch(context.Background(), testDeck(1), previous)

	assert.ErrorIs(t, err, domain.ErrMalformedInput)
}

func TestIngestService_Ingest_AllCallsFail(t *testing.T) {
	dense := &mockIndex{kind: domain.IndexDense, failAlways: true}
	sparse := &mockIndex{kind: domain.IndexSparse, failAlways: true}
	service := newTestIngest(t, dense, sparse, fastConfig())

	report, err := service.Ingest(context.Background(), testDeck(1))

	require.NoError(t, err)
	assert.Equal(t, 4, report.Failed)
	assert.Equal(t, 0, report.Succeeded)
	assert.Len(t, report.Failures, 4)
	assert.False(t, report.Complete())
}

func TestIngestService_Ingest_UpsertErrorIsNotFatal(t *testing.T) {
	// Sanity check that a failing upsert does not surface as an error
	// from Ingest itself.
	dense := &mockIndex{kind: domain.IndexDense, failAlways: true}
	sparse := &mockIndex{kind: domain.IndexSparse}
	service := newTestIngest(t, dense, sparse, fastConfig())

	_, err := service.Ingest(context.Background(), testDeck(1))

	assert.NoError(t, err)
	assert.False(t, errors.Is(err, domain.ErrIndexUnavailable))
}
