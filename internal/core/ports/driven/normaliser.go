package driven

import (
	"context"

	"github.com/caderno-labs/caderno-cli/internal/core/domain"
)

// Normaliser transforms raw documents into indexed form.
// Each normaliser handles specific MIME types (e.g., PDF, plaintext).
type Normaliser interface {
	// SupportedMIMETypes returns the MIME types this normaliser handles.
	SupportedMIMETypes() []string

	// Priority returns the selection priority (higher = preferred).
	// Format-specific normalisers should return 50-89.
	// Fallback normalisers should return 1-9.
	Priority() int

	// Normalise transforms a raw document into a document with Content.
	// Chunking is handled by the PostProcessor pipeline.
	Normalise(ctx context.Context, raw *domain.RawDocument) (*NormaliseResult, error)
}

// NormaliseResult contains the output of normalisation.
type NormaliseResult struct {
	// Document is the normalised document with Content populated.
	Document domain.Document

	// PageOffsets maps byte offsets in Content to 1-based page numbers
	// for paged formats. Nil for formats without page structure. The
	// chunker uses it to record chunk provenance.
	PageOffsets []PageOffset
}

// PageOffset marks where a page begins within normalised content.
type PageOffset struct {
	// Offset is the byte offset in Document.Content.
	Offset int

	// Page is the 1-based page number starting at Offset.
	Page int
}

// NormaliserRegistry selects the appropriate normaliser for a raw
// document based on MIME type and priority.
type NormaliserRegistry interface {
	// Register adds a normaliser to the registry.
	Register(n Normaliser)

	// Normalise picks the highest-priority normaliser for the raw
	// document's MIME type and runs it. Returns
	// domain.ErrUnsupportedType when no normaliser matches.
	Normalise(ctx context.Context, raw *domain.RawDocument) (*NormaliseResult, error)
}
