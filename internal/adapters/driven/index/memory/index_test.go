package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deckbot-labs/deckindex-cli/internal/core/domain"
)

func seeded(t *testing.T) *Index {
	t.Helper()
	index := New(domain.IndexDense, "memory-dense")
	err := index.Upsert(context.Background(), "global", []domain.Record{
		{ID: "a_meta", Content: "Filename: a\nCompany: ACME\nExecutive Summary: retail strategy", Type: domain.RecordTypeDeckMetadata, DocumentID: "a", Company: "ACME"},
		{ID: "a_slide_001", Content: "Summary: retail growth plan", Type: domain.RecordTypeSlide, DocumentID: "a", Company: "ACME", SlideNumber: 1},
		{ID: "b_slide_001", Content: "Summary: insurance pricing", Type: domain.RecordTypeSlide, DocumentID: "b", Company: "Globex", SlideNumber: 1},
	})
	require.NoError(t, err)
	return index
}

func TestIndex_SearchRanksByOverlap(t *testing.T) {
	index := seeded(t)

	hits, err := index.Search(context.Background(), "global", "retail growth", 10, nil)

	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "a_slide_001", hits[0].ID, "both terms match the slide")
	assert.Equal(t, "a_meta", hits[1].ID)
	assert.Greater(t, hits[0].Score, hits[1].Score)
}

func TestIndex_SearchFilter(t *testing.T) {
	index := seeded(t)

	hits, err := index.Search(context.Background(), "global", "summary", 10,
		map[string]any{"company": map[string]any{"$eq": "Globex"}})

	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "b_slide_001", hits[0].ID)
}

func TestIndex_SearchTopK(t *testing.T) {
	index := seeded(t)

	hits, err := index.Search(context.Background(), "global", "summary", 1, nil)

	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestIndex_UpsertOverwrites(t *testing.T) {
	index := seeded(t)

	err := index.Upsert(context.Background(), "global", []domain.Record{
		{ID: "a_slide_001", Content: "Summary: revised retail growth plan", Type: domain.RecordTypeSlide, DocumentID: "a", SlideNumber: 1},
	})
	require.NoError(t, err)

	stats, err := index.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalRecords, "overwrite does not add a record")
}

func TestIndex_NamespaceIsolation(t *testing.T) {
	index := seeded(t)

	hits, err := index.Search(context.Background(), "doc:a", "retail", 10, nil)

	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestIndex_Stats(t *testing.T) {
	index := seeded(t)
	require.NoError(t, index.Upsert(context.Background(), "doc:a", []domain.Record{
		{ID: "a_meta", Content: "x", Type: domain.RecordTypeDeckMetadata},
	}))

	stats, err := index.Stats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "memory-dense", stats.Name)
	assert.Equal(t, 4, stats.TotalRecords)
	assert.Equal(t, 3, stats.Namespaces["global"])
	assert.Equal(t, 1, stats.Namespaces["doc:a"])
}
