// Package domain defines the core business entities for Docdex.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - RepositoryID: A normalized repository identity
//   - RepoFile: Decoded file content from a connector
//   - Document: The ingestion ledger record for one file
//   - Chunk: A bounded span of text or code with positional metadata
//   - Brief: A structured requirements document driving retrieval
//   - QueryPlan / RetrievalResult: Retrieval inputs and outputs
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
