package driven

import "context"

// VectorIndex provides semantic similarity search operations over an
// embedded, on-disk index. The index survives process restart; loading
// a damaged index fails with domain.ErrIndexCorrupt and requires
// re-ingestion.
type VectorIndex interface {
	// Add inserts a vector for the given chunk ID. Adding an ID that
	// is already present is a no-op, which keeps re-ingestion of
	// unchanged chunks idempotent.
	Add(ctx context.Context, chunkID string, embedding []float32) error

	// Delete removes a vector from the index.
	Delete(ctx context.Context, chunkID string) error

	// Search finds the k nearest neighbours to the query vector,
	// ordered by descending similarity. Ties are broken by insertion
	// order, earliest first. An empty index returns no hits and no
	// error.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Len returns the number of vectors currently indexed.
	Len() int

	// Flush persists the index to disk.
	Flush() error

	// Close flushes and releases resources.
	Close() error
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// Similarity is the cosine similarity score (0-1).
	Similarity float64
}
