// Package domain defines the core business entities for Deckindex.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Deck: An ingested slide deck with its metadata
//   - Slide: One page of a deck as extracted upstream
//   - Record: The atomic searchable unit stored in an index
//   - Target: One (index kind, namespace) upload destination
//   - MergedResult: A deduplicated search hit with a fused score
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
