// Package sqlite provides a unified SQLite-based implementation of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements multiple store interfaces
// through a single database connection:
//
//   - SourceStore: ingestion directory persistence
//   - DocumentStore: document and chunk persistence, embeddings included
//   - SyncStateStore: ingestion progress persistence
//   - ChatStore: conversation history persistence
//   - FlashcardStore: generated flashcard persistence
//
// Chunk embeddings are stored alongside the chunks, so the vector index
// can be rebuilt from this database without re-embedding.
//
// # Schema
//
// The database schema is managed through versioned migrations embedded
// from the migrations/ directory.
//
// # Data Location
//
// By default, the database is stored at ~/.caderno/data/caderno.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
