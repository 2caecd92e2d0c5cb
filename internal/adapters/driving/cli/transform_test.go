package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransformCmd_WritesBatchFilesAndSummary(t *testing.T) {
	_, _, _, cleanup := setupTestServices()
	defer cleanup()
	defer func() { transformOutDir = "" }()

	dir := t.TempDir()
	path := writeDeckFile(t, dir, "deck.json", deckJSON)
	outDir := filepath.Join(dir, "out")

	out, err := execute(t, "transform", "--out", outDir, path)

	require.NoError(t, err)
	assert.Contains(t, out, "Wrote 1 batch files")

	batchData, err := os.ReadFile(filepath.Join(outDir, "batch_000.json"))
	require.NoError(t, err)
	var records []map[string]any
	require.NoError(t, json.Unmarshal(batchData, &records))
	require.Len(t, records, 3)
	assert.Equal(t, "db_insurance_2025_meta", records[0]["_id"])
	assert.Equal(t, "deck_metadata", records[0]["type"])
	assert.NotEmpty(t, records[0]["content"])
	assert.Equal(t, "db_insurance_2025_slide_001", records[1]["_id"])
	assert.Equal(t, "market, growth", records[1]["keywords"])

	summaryData, err := os.ReadFile(filepath.Join(outDir, "summary.json"))
	require.NoError(t, err)
	var summary transformSummary
	require.NoError(t, json.Unmarshal(summaryData, &summary))
	assert.Equal(t, "db_insurance_2025", summary.DocumentID)
	assert.Equal(t, 3, summary.RecordCount)
	assert.Equal(t, 1, summary.BatchCount)
	assert.Equal(t, []string{"batch_000.json"}, summary.BatchFiles)
	assert.Equal(t, []string{
		"dense/doc:db_insurance_2025",
		"dense/global",
		"sparse/doc:db_insurance_2025",
		"sparse/global",
	}, summary.Targets)
}

func TestTransformCmd_DefaultOutputDirectory(t *testing.T) {
	_, _, _, cleanup := setupTestServices()
	defer cleanup()

	dir := t.TempDir()
	path := writeDeckFile(t, dir, "deck.json", deckJSON)

	_, err := execute(t, "transform", path)

	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "batches", "summary.json"))
}

func TestTransformCmd_NoNetworkCalls(t *testing.T) {
	ingest, _, _, cleanup := setupTestServices()
	defer cleanup()
	defer func() { transformOutDir = "" }()

	dir := t.TempDir()
	path := writeDeckFile(t, dir, "deck.json", deckJSON)

	_, err := execute(t, "transform", "--out", filepath.Join(dir, "out"), path)

	require.NoError(t, err)
	assert.Equal(t, 0, ingest.dispatched)
}
