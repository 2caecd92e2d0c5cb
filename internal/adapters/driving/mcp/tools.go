package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/deckbot-labs/deckindex-cli/internal/core/domain"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query     string `json:"query" jsonschema:"the search query to find deck content"`
	Namespace string `json:"namespace,omitempty" jsonschema:"namespace to search: global (default) or doc:{documentId}"`
	Company   string `json:"company,omitempty" jsonschema:"restrict results to one company"`
	Industry  string `json:"industry,omitempty" jsonschema:"restrict results to one industry"`
	TopK      int    `json:"top_k,omitempty" jsonschema:"per-index candidate count before fusion"`
	TopN      int    `json:"top_n,omitempty" jsonschema:"maximum number of reranked results to return"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single reranked search result.
type SearchResultOutput struct {
	ID         string  `json:"id"`
	DocumentID string  `json:"document_id,omitempty"`
	Company    string  `json:"company,omitempty"`
	Score      float64 `json:"score"`
	Content    string  `json:"content"`
}

// IngestInput is the input schema for the ingest_deck tool. The deck shape
// mirrors the deck metadata JSON files.
type IngestInput struct {
	Filename         string       `json:"filename" jsonschema:"original deck filename, used to derive the document ID"`
	Company          string       `json:"company,omitempty"`
	Industry         string       `json:"industry,omitempty"`
	ExecutiveSummary string       `json:"executive_summary,omitempty"`
	TotalPages       int          `json:"total_pages,omitempty"`
	CreatedDate      string       `json:"created_date,omitempty"`
	SourceURL        string       `json:"source_url,omitempty"`
	Slides           []SlideInput `json:"slides" jsonschema:"per-slide extracted content"`
}

// SlideInput is one slide of an IngestInput deck.
type SlideInput struct {
	SlideNumber int      `json:"slide_number" jsonschema:"1-based slide position"`
	Content     string   `json:"content,omitempty"`
	Summary     string   `json:"summary,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
	Layout      string   `json:"layout,omitempty"`
	ImageURL    string   `json:"image_url,omitempty"`
}

// IngestOutput is the output schema for the ingest_deck tool.
type IngestOutput struct {
	DocumentID      string `json:"document_id"`
	TotalOperations int    `json:"total_operations"`
	Succeeded       int    `json:"succeeded"`
	Failed          int    `json:"failed"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.inner, &mcp.Tool{
		Name:        "search",
		Description: "Search indexed slide decks with dense + sparse retrieval and cross-encoder reranking",
	}, s.handleSearch)

	if s.ports.Ingest != nil {
		mcp.AddTool(s.inner, &mcp.Tool{
			Name:        "ingest_deck",
			Description: "Ingest one deck's metadata into the search indexes",
		}, s.handleIngest)
	}
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	filter := make(map[string]any)
	if input.Company != "" {
		filter["company"] = map[string]any{"$eq": input.Company}
	}
	if input.Industry != "" {
		filter["industry"] = map[string]any{"$eq": input.Industry}
	}
	if len(filter) == 0 {
		filter = nil
	}

	opts := domain.SearchOptions{
		Namespace:  input.Namespace,
		Filter:     filter,
		TopK:       input.TopK,
		RerankTopN: input.TopN,
	}
	results, err := s.ports.Retrieval.Search(ctx, input.Query, opts)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(results)),
		Count:   len(results),
	}
	for i := range results {
		out := SearchResultOutput{
			ID:      results[i].ID,
			Score:   results[i].Score,
			Content: results[i].Content,
		}
		if docID, ok := results[i].Attributes["document_id"].(string); ok {
			out.DocumentID = docID
		}
		if company, ok := results[i].Attributes["company"].(string); ok {
			out.Company = company
		}
		output.Results[i] = out
	}

	return nil, output, nil
}

// handleIngest handles the ingest_deck tool invocation.
func (s *Server) handleIngest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	deck := domain.Deck{
		Metadata: domain.DeckMetadata{
			Filename:         input.Filename,
			Company:          input.Company,
			Industry:         input.Industry,
			ExecutiveSummary: input.ExecutiveSummary,
			TotalPages:       input.TotalPages,
			CreatedDate:      input.CreatedDate,
			SourceURL:        input.SourceURL,
		},
	}
	for _, slide := range input.Slides {
		deck.Slides = append(deck.Slides, domain.Slide{
			Number:   slide.SlideNumber,
			Content:  slide.Content,
			Summary:  slide.Summary,
			Keywords: slide.Keywords,
			Layout:   slide.Layout,
			ImageURL: slide.ImageURL,
		})
	}

	report, err := s.ports.Ingest.Ingest(ctx, deck)
	if err != nil {
		return nil, IngestOutput{}, err
	}

	return nil, IngestOutput{
		DocumentID:      report.DocumentID,
		TotalOperations: report.TotalOperations,
		Succeeded:       report.Succeeded,
		Failed:          report.Failed,
	}, nil
}
