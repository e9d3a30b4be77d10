// Package chunker provides a fixed-size text chunking processor.
package chunker

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/caderno-labs/caderno-cli/internal/core/domain"
	"github.com/caderno-labs/caderno-cli/internal/core/ports/driven"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// Processor splits document content into fixed-size chunks.
// Sizes are measured in runes, so multi-byte text never splits inside
// a character. It implements the PostProcessor interface.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process splits the document content into chunks.
// Input chunks are ignored; this processor creates new chunks from
// document content. Chunk IDs are content hashes over document ID,
// position and text, so re-chunking unchanged content reproduces the
// same IDs.
func (p *Processor) Process(_ context.Context, doc *domain.Document, pages []driven.PageOffset, _ []domain.Chunk) ([]domain.Chunk, error) {
	if doc.Content == "" {
		// Empty content produces no chunks
		return nil, nil
	}

	runes := []rune(doc.Content)
	total := len(runes)

	// Byte offset of every rune, for page attribution.
	byteOffsets := make([]int, total+1)
	offset := 0
	for i, r := range runes {
		byteOffsets[i] = offset
		offset += utf8.RuneLen(r)
	}
	byteOffsets[total] = offset

	step := p.chunkSize - p.overlap
	chunks := make([]domain.Chunk, 0, total/step+1)

	position := 0
	for start := 0; start < total; start += step {
		end := start + p.chunkSize
		if end > total {
			end = total
		}

		content := string(runes[start:end])

		chunks = append(chunks, domain.Chunk{
			ID:         chunkID(doc.ID, position, content),
			DocumentID: doc.ID,
			Content:    content,
			Position:   position,
			Page:       pageAt(pages, byteOffsets[start]),
			Metadata:   make(map[string]any),
		})
		position++

		if end == total {
			break
		}
	}

	return chunks, nil
}

// chunkID derives a stable chunk identifier from its identity triple.
func chunkID(docID string, position int, content string) string {
	return domain.HashContent(fmt.Sprintf("%s:%d:%s", docID, position, content))
}

// pageAt returns the 1-based page containing the byte offset, or zero
// when the document has no page structure.
func pageAt(pages []driven.PageOffset, byteOffset int) int {
	page := 0
	for _, p := range pages {
		if p.Offset > byteOffset {
			break
		}
		page = p.Page
	}
	return page
}
