package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/deckbot-labs/deckindex-cli/internal/core/domain"
	"github.com/deckbot-labs/deckindex-cli/internal/core/ports/driving"
	"github.com/deckbot-labs/deckindex-cli/internal/logger"
)

var ingestWatch bool

var ingestCmd = &cobra.Command{
	Use:   "ingest <path>",
	Short: "Ingest deck metadata into the search indexes",
	Long: `Reads deck metadata JSON and uploads the derived records to every
(index, namespace) target: dense/doc, dense/global, sparse/doc, sparse/global.

The path may be a single deck file or a directory of deck files. Directory
ingestion isolates failures per file: one malformed deck does not stop the
run. With --watch the directory is watched and new or rewritten deck files
are ingested as they appear.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVarP(&ingestWatch, "watch", "w", false, "watch a directory and ingest deck files as they appear")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	path := args[0]
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	if ingestWatch {
		if !info.IsDir() {
			return fmt.Errorf("%w: --watch requires a directory", domain.ErrConfiguration)
		}
		return watchDirectory(cmd, path)
	}

	if info.IsDir() {
		return ingestDirectory(cmd, path)
	}
	return ingestFile(cmd.Context(), cmd, path)
}

// ingestFile runs the full pipeline for one deck file and persists its
// manifest.
func ingestFile(ctx context.Context, cmd *cobra.Command, path string) error {
	deck, err := loadDeck(path)
	if err != nil {
		return err
	}

	prepared, err := ingestService.Prepare(deck)
	if err != nil {
		return fmt.Errorf("preparing %s: %w", path, err)
	}

	report, err := ingestService.Dispatch(ctx, prepared)
	if err != nil {
		return fmt.Errorf("dispatching %s: %w", path, err)
	}

	saveManifest(ctx, deck, prepared, report)
	printReport(cmd, path, report)

	if !report.Complete() {
		return fmt.Errorf("%d of %d upsert calls failed for %s (use redispatch to retry)",
			report.Failed, report.TotalOperations, report.DocumentID)
	}
	return nil
}

// ingestDirectory ingests every .json file in dir. Failures are reported
// per file and do not stop the run.
func ingestDirectory(cmd *cobra.Command, dir string) error {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".json") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("walking %s: %w", dir, err)
	}
	if len(paths) == 0 {
		cmd.Printf("No deck files found in %s\n", dir)
		return nil
	}

	failed := 0
	for _, path := range paths {
		if err := ingestFile(cmd.Context(), cmd, path); err != nil {
			logger.Error("Ingest failed for %s: %v", path, err)
			failed++
		}
	}

	cmd.Printf("Ingested %d/%d deck files\n", len(paths)-failed, len(paths))
	if failed > 0 {
		return fmt.Errorf("%d of %d deck files failed", failed, len(paths))
	}
	return nil
}

// watchDebounce is how long a deck file must be quiet before it is
// ingested. Extractors write metadata files incrementally.
const watchDebounce = 500 * time.Millisecond

// watchDirectory ingests deck files as they are created or rewritten in
// dir. Runs until the command context is cancelled.
func watchDirectory(cmd *cobra.Command, dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	cmd.Printf("Watching %s for deck files (ctrl-c to stop)\n", dir)

	ctx := cmd.Context()
	pending := make(map[string]*time.Timer)
	ready := make(chan string)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !strings.EqualFold(filepath.Ext(event.Name), ".json") {
				continue
			}
			// Debounce: restart the timer on every write so the file
			// is only ingested once it stops changing.
			if timer, ok := pending[event.Name]; ok {
				timer.Stop()
			}
			name := event.Name
			pending[name] = time.AfterFunc(watchDebounce, func() {
				select {
				case ready <- name:
				case <-ctx.Done():
				}
			})

		case name := <-ready:
			delete(pending, name)
			if err := ingestFile(ctx, cmd, name); err != nil {
				logger.Error("Ingest failed for %s: %v", name, err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("Watcher error: %v", err)
		}
	}
}

// saveManifest records the run for the stats and redispatch commands.
// Failure to persist is logged, not fatal: the upserts already happened.
func saveManifest(ctx context.Context, deck domain.Deck, prepared *driving.Prepared, report *domain.UpsertReport) {
	if manifestStore == nil {
		return
	}
	manifest := domain.Manifest{
		DocumentID:  prepared.DocumentID,
		Filename:    deck.Metadata.Filename,
		Company:     deck.Metadata.Company,
		Industry:    deck.Metadata.Industry,
		RecordCount: len(prepared.Records),
		BatchCount:  len(prepared.Batches),
		FallbackID:  prepared.FallbackID,
		Report:      *report,
		IngestedAt:  time.Now().UTC(),
	}
	if err := manifestStore.Save(ctx, manifest); err != nil {
		logger.Error("Saving manifest for %s: %v", prepared.DocumentID, err)
	}
}

func printReport(cmd *cobra.Command, path string, report *domain.UpsertReport) {
	cmd.Printf("%s -> %s: %d/%d upsert calls succeeded\n",
		filepath.Base(path), report.DocumentID, report.Succeeded, report.TotalOperations)
	for _, failure := range report.Failures {
		cmd.Printf("  failed: batch %d -> %s: %s\n", failure.BatchIndex, failure.Target, failure.Reason)
	}
}
