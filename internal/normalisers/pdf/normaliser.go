// Package pdf extracts text from PDF documents using a pure Go parser.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/caderno-labs/caderno-cli/internal/core/domain"
	"github.com/caderno-labs/caderno-cli/internal/core/ports/driven"
)

// pageSeparator joins extracted pages in Content.
const pageSeparator = "\n\n"

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles PDF documents.
type Normaliser struct{}

// New creates a new PDF normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"application/pdf"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50 // Format-specific normaliser
}

// Normalise extracts text from a PDF page by page. Page boundaries are
// recorded as offsets into Content so chunks can cite the page they
// came from. Pages whose text cannot be extracted are skipped.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	content, offsets, pages, err := extractText(raw.Content)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrSourceRead, raw.URI, err)
	}

	doc := domain.Document{
		SourceID:    raw.SourceID,
		URI:         raw.URI,
		Title:       extractTitle(content, raw.URI),
		Content:     content,
		ContentHash: domain.HashContent(content),
		Pages:       pages,
		Metadata:    copyMetadata(raw.Metadata),
	}

	if doc.Metadata == nil {
		doc.Metadata = make(map[string]any)
	}
	doc.Metadata["mime_type"] = raw.MIMEType
	doc.Metadata["pages"] = pages

	return &driven.NormaliseResult{
		Document:    doc,
		PageOffsets: offsets,
	}, nil
}

// extractText pulls plain text from every page of the PDF.
// The parser panics on some malformed files, so extraction recovers
// and reports the panic as an error.
func extractText(data []byte) (content string, offsets []driven.PageOffset, pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parsing pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", nil, 0, fmt.Errorf("opening pdf: %w", err)
	}

	pages = reader.NumPage()

	var sb strings.Builder
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil || strings.TrimSpace(text) == "" {
			continue
		}

		if sb.Len() > 0 {
			sb.WriteString(pageSeparator)
		}
		offsets = append(offsets, driven.PageOffset{Offset: sb.Len(), Page: i})
		sb.WriteString(strings.TrimSpace(text))
	}

	return sb.String(), offsets, pages, nil
}

// extractTitle takes the first non-empty line of the content, falling
// back to the filename for PDFs with no extractable text.
func extractTitle(content, uri string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			if runes := []rune(line); len(runes) > 120 {
				line = string(runes[:120])
			}
			return line
		}
	}

	filename := filepath.Base(uri)
	filename = strings.TrimSuffix(filename, filepath.Ext(filename))
	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")
	return filename
}

// copyMetadata creates a shallow copy of metadata.
func copyMetadata(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
