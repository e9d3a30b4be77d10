package pdf

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caderno-labs/caderno-cli/internal/core/domain"
)

func TestNew(t *testing.T) {
	normaliser := New()
	require.NotNil(t, normaliser)
	assert.IsType(t, &Normaliser{}, normaliser)
}

func TestSupportedMIMETypes(t *testing.T) {
	normaliser := New()
	mimeTypes := normaliser.SupportedMIMETypes()

	require.NotEmpty(t, mimeTypes)
	assert.Contains(t, mimeTypes, "application/pdf")
	assert.Len(t, mimeTypes, 1)
}

func TestPriority(t *testing.T) {
	normaliser := New()
	assert.Equal(t, 50, normaliser.Priority())
}

func TestNormalise_NilDocument(t *testing.T) {
	normaliser := New()

	result, err := normaliser.Normalise(context.Background(), nil)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, result)
}

func TestNormalise_MalformedPDF(t *testing.T) {
	normaliser := New()
	raw := &domain.RawDocument{
		SourceID: "test-source",
		URI:      "/notes/broken.pdf",
		MIMEType: "application/pdf",
		Content:  []byte("this is not a pdf"),
	}

	result, err := normaliser.Normalise(context.Background(), raw)

	assert.ErrorIs(t, err, domain.ErrSourceRead)
	assert.Contains(t, err.Error(), "broken.pdf")
	assert.Nil(t, result)
}

func TestNormalise_EmptyContent(t *testing.T) {
	normaliser := New()
	raw := &domain.RawDocument{
		SourceID: "test-source",
		URI:      "/notes/empty.pdf",
		MIMEType: "application/pdf",
		Content:  nil,
	}

	result, err := normaliser.Normalise(context.Background(), raw)

	assert.ErrorIs(t, err, domain.ErrSourceRead)
	assert.Nil(t, result)
}

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		uri      string
		expected string
	}{
		{
			name:     "first line as title",
			content:  "Document Title\n\nSome content here.",
			uri:      "/doc.pdf",
			expected: "Document Title",
		},
		{
			name:     "skip empty lines",
			content:  "\n\n\nActual Title\nContent",
			uri:      "/doc.pdf",
			expected: "Actual Title",
		},
		{
			name:     "fallback to filename",
			content:  "",
			uri:      "/notes/thermo_week-2.pdf",
			expected: "thermo week 2",
		},
		{
			name:     "whitespace-only content falls back",
			content:  "   \n  \n",
			uri:      "/slides.pdf",
			expected: "slides",
		},
		{
			name:     "very long first line is truncated",
			content:  strings.Repeat("a", 300),
			uri:      "/doc.pdf",
			expected: strings.Repeat("a", 120),
		},
		{
			name:     "truncation does not split multi-byte runes",
			content:  strings.Repeat("熱", 200),
			uri:      "/doc.pdf",
			expected: strings.Repeat("熱", 120),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, extractTitle(tc.content, tc.uri))
		})
	}
}
