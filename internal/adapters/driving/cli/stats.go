package cli

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/deckbot-labs/deckindex-cli/internal/core/domain"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show index statistics and recent ingestions",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}

	reports, err := retrievalService.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("fetching index stats: %w", err)
	}

	for _, kind := range []domain.IndexKind{domain.IndexDense, domain.IndexSparse} {
		report, ok := reports[kind]
		if !ok {
			continue
		}
		cmd.Printf("%s index (%s): %d records\n", kind, report.Name, report.TotalRecords)

		namespaces := make([]string, 0, len(report.Namespaces))
		for ns := range report.Namespaces {
			namespaces = append(namespaces, ns)
		}
		sort.Strings(namespaces)
		for _, ns := range namespaces {
			cmd.Printf("  %-30s %d\n", ns, report.Namespaces[ns])
		}
		cmd.Println()
	}

	if manifestStore == nil {
		return nil
	}
	manifests, err := manifestStore.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing manifests: %w", err)
	}
	if len(manifests) == 0 {
		return nil
	}

	cmd.Println("Ingested documents:")
	for _, m := range manifests {
		status := "complete"
		if !m.Report.Complete() {
			status = fmt.Sprintf("%d failed calls", m.Report.Failed)
		}
		cmd.Printf("  %-30s %3d records  %s  (%s)\n",
			m.DocumentID, m.RecordCount, m.IngestedAt.Format("2006-01-02 15:04"), status)
	}
	return nil
}
