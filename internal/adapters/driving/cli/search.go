package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deckbot-labs/deckindex-cli/internal/core/domain"
)

var (
	searchNamespace string
	searchCompany   string
	searchIndustry  string
	searchTopK      int
	searchRerankN   int
	searchJSON      bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search indexed decks",
	Long: `Runs the cascading retrieval pipeline: dense and sparse search in
parallel, score-fusion merge, then cross-encoder rerank. Results carry the
reranker's relevance scores.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchNamespace, "namespace", "", "namespace to search (default: global)")
	searchCmd.Flags().StringVar(&searchCompany, "company", "", "restrict to one company")
	searchCmd.Flags().StringVar(&searchIndustry, "industry", "", "restrict to one industry")
	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "k", 0, "per-index candidate count (default: configured value)")
	searchCmd.Flags().IntVarP(&searchRerankN, "rerank-n", "n", 0, "results to rerank and return (default: configured value)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}

	opts := domain.SearchOptions{
		Namespace:  searchNamespace,
		TopK:       searchTopK,
		RerankTopN: searchRerankN,
		Filter:     buildFilter(searchCompany, searchIndustry),
	}

	results, err := retrievalService.Search(cmd.Context(), args[0], opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	return outputSearchText(cmd, results)
}

// buildFilter assembles the attribute filter from the convenience flags.
func buildFilter(company, industry string) map[string]any {
	filter := make(map[string]any)
	if company != "" {
		filter["company"] = map[string]any{"$eq": company}
	}
	if industry != "" {
		filter["industry"] = map[string]any{"$eq": industry}
	}
	if len(filter) == 0 {
		return nil
	}
	return filter
}

func outputSearchJSON(cmd *cobra.Command, results []domain.MergedResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchText(cmd *cobra.Command, results []domain.MergedResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i, r := range results {
		cmd.Printf("  [%d] %s (%.4f)\n", i+1, r.ID, r.Score)
		if company, ok := r.Attributes["company"].(string); ok && company != "" {
			cmd.Printf("      Company: %s\n", company)
		}
		if title, ok := r.Attributes["title"].(string); ok && title != "" {
			cmd.Printf("      Deck: %s\n", title)
		}
		cmd.Printf("      %s\n", firstLine(r.Content))
		cmd.Println()
	}
	return nil
}

// firstLine trims the content preview to its first line.
func firstLine(s string) string {
	for i, c := range s {
		if c == '\n' {
			return s[:i]
		}
	}
	return s
}
