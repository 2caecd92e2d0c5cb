package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// uriScheme is the custom URI scheme for deckindex resources.
const uriScheme = "deckindex://"

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource listing every ingested document.
	s.inner.AddResource(&mcp.Resource{
		URI:         uriScheme + "manifests",
		Name:        "manifests",
		Description: "Ingestion manifests for all indexed decks",
		MIMEType:    "application/json",
	}, s.handleManifestsResource)

	// Template for one document's manifest, including per-call failures.
	s.inner.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "manifests/{documentId}",
		Name:        "manifest",
		Description: "Ingestion manifest of a specific deck, including failed upsert calls",
		MIMEType:    "application/json",
	}, s.handleManifestResource)
}

// manifestInfo is the compact manifest listing shape.
type manifestInfo struct {
	DocumentID  string `json:"document_id"`
	Filename    string `json:"filename"`
	Company     string `json:"company,omitempty"`
	Industry    string `json:"industry,omitempty"`
	RecordCount int    `json:"record_count"`
	Complete    bool   `json:"complete"`
	IngestedAt  string `json:"ingested_at"`
}

// handleManifestsResource returns the manifest list.
func (s *Server) handleManifestsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Manifests == nil {
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     "[]",
			}},
		}, nil
	}

	manifests, err := s.ports.Manifests.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing manifests: %w", err)
	}

	infos := make([]manifestInfo, len(manifests))
	for i, m := range manifests {
		infos[i] = manifestInfo{
			DocumentID:  m.DocumentID,
			Filename:    m.Filename,
			Company:     m.Company,
			Industry:    m.Industry,
			RecordCount: m.RecordCount,
			Complete:    m.Report.Complete(),
			IngestedAt:  m.IngestedAt.UTC().Format("2006-01-02T15:04:05Z"),
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling manifests: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleManifestResource returns one document's full manifest.
func (s *Server) handleManifestResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Manifests == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	documentID := extractDocumentID(req.Params.URI)
	if documentID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	manifest, err := s.ports.Manifests.Get(ctx, documentID)
	if err != nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling manifest: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractDocumentID extracts the document ID from a URI like
// deckindex://manifests/{documentId}.
func extractDocumentID(uri string) string {
	const prefix = uriScheme + "manifests/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	return strings.TrimPrefix(uri, prefix)
}
