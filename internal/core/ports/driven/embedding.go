package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// Note: This is separate from VectorIndex which stores and searches
// vectors. EmbeddingService generates vectors; VectorIndex stores them.
// Queries must be embedded with the same model used at ingestion.
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	// Returns a domain.ErrEmbedding wrap when the backend is
	// unreachable; the caller decides on retry policy.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts.
	// Result order matches input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 768).
	// This is determined by the model and must match the VectorIndex
	// configuration.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight
	// test request. Used at startup to fail before first use.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
