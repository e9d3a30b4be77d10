// Package domain defines the core business entities for Caderno.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A normalised source document
//   - Chunk: An embeddable unit of document text
//   - Query: A question with optional conversation history
//   - RetrievalResult: Ranked chunks for a query
//   - Prompt: Composed text sent to the language model
//   - AnswerStream: Ordered token sequence from generation
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
