package driven

import (
	"context"

	"github.com/caderno-labs/caderno-cli/internal/core/domain"
)

// DocumentStore persists documents and their chunks.
type DocumentStore interface {
	// SaveDocument inserts or updates a document.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// GetDocument retrieves a document by ID.
	// Returns domain.ErrNotFound if it does not exist.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// GetDocumentByURI retrieves a document by source ID and URI.
	// Returns domain.ErrNotFound if it does not exist.
	GetDocumentByURI(ctx context.Context, sourceID, uri string) (*domain.Document, error)

	// ListDocuments returns all documents for a source, or all
	// documents when sourceID is empty.
	ListDocuments(ctx context.Context, sourceID string) ([]domain.Document, error)

	// SaveChunks stores chunks with their embeddings. Saving a chunk
	// whose ID already exists replaces it (the ID is a content hash,
	// so the replacement is byte-identical).
	SaveChunks(ctx context.Context, chunks []domain.Chunk) error

	// GetChunks retrieves all chunks for a document, in position order.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// GetChunk retrieves a specific chunk by ID.
	// Returns domain.ErrNotFound if it does not exist.
	GetChunk(ctx context.Context, id string) (*domain.Chunk, error)

	// HasChunk reports whether a chunk ID is already stored. Used to
	// skip re-embedding unchanged chunks on re-ingestion.
	HasChunk(ctx context.Context, id string) (bool, error)

	// ChunkCount returns the number of stored chunks.
	ChunkCount(ctx context.Context) (int, error)

	// SampleChunks returns up to n chunks spread across documents,
	// used for flashcard and mind map generation.
	SampleChunks(ctx context.Context, n int) ([]domain.Chunk, error)

	// DeleteChunks removes the given chunks. Used to drop stale chunks
	// when a document's content changes between ingestions.
	DeleteChunks(ctx context.Context, ids []string) error

	// DeleteDocument removes a document and its chunks.
	DeleteDocument(ctx context.Context, id string) error
}
