package mcp

import (
	"github.com/deckbot-labs/deckindex-cli/internal/core/ports/driven"
	"github.com/deckbot-labs/deckindex-cli/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Retrieval serves search queries and index stats.
	Retrieval driving.RetrievalService

	// Ingest dispatches deck records. Optional: without it the
	// ingest_deck tool is not registered.
	Ingest driving.IngestService

	// Manifests backs the manifest resources. Optional.
	Manifests driven.ManifestStore
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	return nil
}
