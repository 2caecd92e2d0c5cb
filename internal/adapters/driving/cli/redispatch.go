package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/deckbot-labs/deckindex-cli/internal/core/domain"
	"github.com/deckbot-labs/deckindex-cli/internal/logger"
)

var redispatchCmd = &cobra.Command{
	Use:   "redispatch <deck-file>",
	Short: "Re-run the failed upsert calls of a previous ingestion",
	Long: `Loads the stored manifest for the deck's document ID and re-runs only
the (batch, target) pairs that failed. Upserts are idempotent, so pairs that
meanwhile succeeded are safe to replay. The manifest is updated with the new
outcome.`,
	Args: cobra.ExactArgs(1),
	RunE: runRedispatch,
}

func init() {
	rootCmd.AddCommand(redispatchCmd)
}

func runRedispatch(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}
	if manifestStore == nil {
		return errors.New("manifest store not configured")
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

	ctx := cmd.Context()
	manifest, err := manifestStore.Get(ctx, prepared.DocumentID)
	if err != nil {
		return fmt.Errorf("loading manifest: %w", err)
	}
	if manifest.Report.Complete() {
		cmd.Printf("Nothing to redispatch: %s is complete\n", prepared.DocumentID)
		return nil
	}

	report, err := ingestService.Redispatch(ctx, deck, manifest.Report)
	if err != nil {
		return fmt.Errorf("redispatching %s: %w", path, err)
	}

	// Merge the retry outcome into the stored report: retried pairs take
	// their new result, everything else keeps the original success.
	merged := mergeReports(manifest.Report, *report)
	manifest.Report = merged
	manifest.IngestedAt = time.Now().UTC()
	if err := manifestStore.Save(ctx, *manifest); err != nil {
		logger.Error("Saving manifest for %s: %v", prepared.DocumentID, err)
	}

	printReport(cmd, path, &merged)
	if !merged.Complete() {
		return fmt.Errorf("%d upsert calls still failing for %s", merged.Failed, merged.DocumentID)
	}
	return nil
}

// mergeReports folds a retry run into the original report. The retry only
// attempted the original failures, so its successes convert failures and
// its failures replace them.
func mergeReports(original, retry domain.UpsertReport) domain.UpsertReport {
	return domain.UpsertReport{
		DocumentID:      original.DocumentID,
		TotalOperations: original.TotalOperations,
		Succeeded:       original.Succeeded + retry.Succeeded,
		Failed:          retry.Failed,
		Failures:        retry.Failures,
	}
}
