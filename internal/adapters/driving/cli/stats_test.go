package cli

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deckbot-labs/deckindex-cli/internal/core/domain"
	"github.com/deckbot-labs/deckindex-cli/internal/core/ports/driving"
)

func TestStatsCmd_PrintsBothIndexes(t *testing.T) {
	_, retrieval, manifests, cleanup := setupTestServices()
	defer cleanup()

	retrieval.stats = map[domain.IndexKind]*driving.StatsReport{
		domain.IndexDense: {
			Name:         "deckbot-dense",
			TotalRecords: 7,
			Namespaces:   map[string]int{"global": 4, "doc:deck_a": 3},
		},
		domain.IndexSparse: {
			Name:         "deckbot-sparse",
			TotalRecords: 7,
			Namespaces:   map[string]int{"global": 4, "doc:deck_a": 3},
		},
	}
	manifests.manifests["deck_a"] = domain.Manifest{
		DocumentID:  "deck_a",
		RecordCount: 3,
		Report:      domain.UpsertReport{TotalOperations: 4, Succeeded: 4},
		IngestedAt:  time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
	}

	out, err := execute(t, "stats")

	require.NoError(t, err)
	assert.Contains(t, out, "dense index (deckbot-dense): 7 records")
	assert.Contains(t, out, "sparse index (deckbot-sparse): 7 records")
	assert.Contains(t, out, "doc:deck_a")
	assert.Contains(t, out, "Ingested documents:")
	assert.Contains(t, out, "deck_a")
	assert.Contains(t, out, "complete")
}

func TestStatsCmd_FlagsIncompleteIngestions(t *testing.T) {
	_, retrieval, manifests, cleanup := setupTestServices()
	defer cleanup()

	retrieval.stats = map[domain.IndexKind]*driving.StatsReport{}
	manifests.manifests["deck_b"] = domain.Manifest{
		DocumentID: "deck_b",
		Report:     domain.UpsertReport{TotalOperations: 4, Succeeded: 2, Failed: 2},
		IngestedAt: time.Now(),
	}

	out, err := execute(t, "stats")

	require.NoError(t, err)
	assert.Contains(t, out, "2 failed calls")
}

func TestStatsCmd_StatsFailure(t *testing.T) {
	_, retrieval, _, cleanup := setupTestServices()
	defer cleanup()

	retrieval.err = errors.New("index unreachable")

	_, err := execute(t, "stats")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "index unreachable")
}
