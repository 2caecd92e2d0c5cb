package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/deckbot-labs/deckindex-cli/internal/core/domain"
)

var transformOutDir string

var transformCmd = &cobra.Command{
	Use:   "transform <deck-file>",
	Short: "Transform deck metadata into upsert batch files",
	Long: `Runs the offline half of the pipeline - sanitize, build records,
validate, batch - and writes each batch as a JSON file plus a summary
manifest, without touching the network. The batch files carry the exact
record payloads ingest would upload.`,
	Args: cobra.ExactArgs(1),
	RunE: runTransform,
}

func init() {
	transformCmd.Flags().StringVarP(&transformOutDir, "out", "o", "", "output directory (default: <deck-file dir>/batches)")
	rootCmd.AddCommand(transformCmd)
}

// batchRecord is the on-disk record shape, identical to the upsert wire
// format: _id, content, then the filterable attributes.
type batchRecord map[string]any

// transformSummary is the summary manifest written beside the batch files.
type transformSummary struct {
	DocumentID  string    `json:"document_id"`
	Filename    string    `json:"filename"`
	FallbackID  bool      `json:"fallback_id"`
	RecordCount int       `json:"record_count"`
	BatchCount  int       `json:"batch_count"`
	BatchFiles  []string  `json:"batch_files"`
	Targets     []string  `json:"targets"`
	CreatedAt   time.Time `json:"created_at"`
}

func runTransform(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	path := args[0]
	deck, err := loadDeck(path)
	if err != nil {
		return err
	}

	prepared, err := ingestService.Prepare(deck)
	if err != nil {
		return fmt.Errorf("preparing %s: %w", path, err)
	}

	outDir := transformOutDir
	if outDir == "" {
		outDir = filepath.Join(filepath.Dir(path), "batches")
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	summary := transformSummary{
		DocumentID:  prepared.DocumentID,
		Filename:    deck.Metadata.Filename,
		FallbackID:  prepared.FallbackID,
		RecordCount: len(prepared.Records),
		BatchCount:  len(prepared.Batches),
		CreatedAt:   time.Now().UTC(),
	}
	for _, target := range domain.TargetsFor(prepared.DocumentID) {
		summary.Targets = append(summary.Targets, target.String())
	}

	for i, batch := range prepared.Batches {
		records := make([]batchRecord, 0, len(batch))
		for _, r := range batch {
			wire := batchRecord{"_id": r.ID, "content": r.Content}
			for k, v := range r.Attributes() {
				wire[k] = v
			}
			records = append(records, wire)
		}

		name := fmt.Sprintf("batch_%03d.json", i)
		if err := writeJSON(filepath.Join(outDir, name), records); err != nil {
			return err
		}
		summary.BatchFiles = append(summary.BatchFiles, name)
	}

	if err := writeJSON(filepath.Join(outDir, "summary.json"), summary); err != nil {
		return err
	}

	cmd.Printf("Wrote %d batch files for %s to %s\n", len(prepared.Batches), prepared.DocumentID, outDir)
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
