// Package mcp provides an MCP (Model Context Protocol) server adapter for
// deckindex. It lets AI assistants search the deck indexes and inspect
// ingestion manifests.
package mcp

import "errors"

// ErrMissingRetrievalService is returned when the retrieval service is not provided.
var ErrMissingRetrievalService = errors.New("mcp: retrieval service is required")
