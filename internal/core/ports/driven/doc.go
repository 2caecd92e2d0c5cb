// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - Index: One instance per index kind (dense, sparse). Both are
//     mandatory - cascading retrieval has no single-modality fallback.
//   - Reranker: Cross-encoder relevance scoring for the final pass.
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - ManifestStore: Ingestion manifest persistence. Without it, reports
//     are printed but not stored, and redispatch is unavailable.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
