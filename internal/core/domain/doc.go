// Package domain defines the core business entities for docask.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - TrackedFile: An ingested file identified by its absolute path
//   - Chunk: A bounded span of extracted text with page provenance
//   - SearchResult: A ranked chunk returned by a search engine
//   - Answer: The orchestrated response to a question
//   - Settings: The explicit configuration value object
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
