package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Document represents a normalised source document.
// It is the canonical representation after text extraction.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// SourceID links to the Source that produced this document.
	SourceID string

	// URI is the original location (file path).
	URI string

	// Title is the human-readable title, usually the file name.
	Title string

	// Content is the full extracted text before chunking.
	Content string

	// ContentHash is the SHA-256 hex digest of Content.
	// Unchanged documents are skipped on re-ingestion.
	ContentHash string

	// Pages is the number of pages in the original file, if known.
	Pages int

	// Metadata contains arbitrary key-value pairs.
	Metadata map[string]any

	// CreatedAt is when the document was first ingested.
	CreatedAt time.Time

	// UpdatedAt is when the document was last re-ingested.
	UpdatedAt time.Time
}

// Chunk represents an embeddable unit within a document.
// Chunks are immutable once created: re-ingestion of changed content
// produces new chunks with new IDs rather than mutating existing ones.
type Chunk struct {
	// ID is the unique identifier for the chunk. It is a stable
	// content hash, so identical content at the same position in the
	// same document always yields the same ID.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Content is the text content of this chunk.
	Content string

	// Position is the ordinal position within the document.
	// Consecutive chunks overlap; position order is document order.
	Position int

	// Page is the page of the source file this chunk starts on.
	// Zero when the source format has no page structure.
	Page int

	// Embedding is the vector representation for similarity search.
	Embedding []float32

	// Metadata contains chunk-specific key-value pairs.
	Metadata map[string]any
}

// HashContent returns the SHA-256 hex digest of content. Document
// content hashes and chunk IDs both use it.
func HashContent(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
