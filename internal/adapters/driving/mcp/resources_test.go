package mcp

import (
	"context"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caderno-labs/caderno-cli/internal/core/domain"
)

func readRequest(uri string) *mcp.ReadResourceRequest {
	req := &mcp.ReadResourceRequest{}
	req.Params = &mcp.ReadResourceParams{URI: uri}
	return req
}

func TestHandleSourcesResource(t *testing.T) {
	source := &mockSourceService{
		sources: []domain.Source{
			{ID: "src-1", Name: "notes", Path: "/home/x/notes"},
		},
	}
	server, err := NewServer(&Ports{Answer: &mockAnswerService{}, Source: source})
	require.NoError(t, err)

	result, err := server.handleSourcesResource(context.Background(), readRequest(uriScheme+"sources"))

	require.NoError(t, err)
	require.Len(t, result.Contents, 1)
	assert.Contains(t, result.Contents[0].Text, "src-1")
	assert.Contains(t, result.Contents[0].Text, "/home/x/notes")
}

func TestHandleSourcesResource_NoService(t *testing.T) {
	server, err := NewServer(&Ports{Answer: &mockAnswerService{}})
	require.NoError(t, err)

	result, err := server.handleSourcesResource(context.Background(), readRequest(uriScheme+"sources"))

	require.NoError(t, err)
	require.Len(t, result.Contents, 1)
	assert.Equal(t, "[]", result.Contents[0].Text)
}

func TestHandleDocumentsResource(t *testing.T) {
	docs := &mockDocumentStore{
		docs: map[string]*domain.Document{
			"doc-1": {ID: "doc-1", SourceID: "src-1", Title: "Thermo Notes", URI: "/notes/thermo.pdf", Pages: 12},
		},
	}
	server, err := NewServer(&Ports{Answer: &mockAnswerService{}, Documents: docs})
	require.NoError(t, err)

	result, err := server.handleDocumentsResource(
		context.Background(),
		readRequest(uriScheme+"sources/src-1/documents"),
	)

	require.NoError(t, err)
	require.Len(t, result.Contents, 1)
	assert.Contains(t, result.Contents[0].Text, "Thermo Notes")
}

func TestHandleDocumentContentResource(t *testing.T) {
	docs := &mockDocumentStore{
		docs: map[string]*domain.Document{
			"doc-1": {ID: "doc-1", Content: "entropy always increases"},
		},
	}
	server, err := NewServer(&Ports{Answer: &mockAnswerService{}, Documents: docs})
	require.NoError(t, err)

	result, err := server.handleDocumentContentResource(
		context.Background(),
		readRequest(uriScheme+"documents/doc-1"),
	)

	require.NoError(t, err)
	require.Len(t, result.Contents, 1)
	assert.Equal(t, "entropy always increases", result.Contents[0].Text)
}

func TestHandleDocumentContentResource_NotFound(t *testing.T) {
	docs := &mockDocumentStore{docs: map[string]*domain.Document{}}
	server, err := NewServer(&Ports{Answer: &mockAnswerService{}, Documents: docs})
	require.NoError(t, err)

	_, err = server.handleDocumentContentResource(
		context.Background(),
		readRequest(uriScheme+"documents/missing"),
	)

	assert.Error(t, err)
}

func TestExtractSourceID(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{uriScheme + "sources/abc/documents", "abc"},
		{uriScheme + "sources/abc", ""},
		{uriScheme + "documents/abc", ""},
		{"http://sources/abc/documents", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, extractSourceID(tt.uri), tt.uri)
	}
}

func TestExtractDocumentID(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{uriScheme + "documents/doc-1", "doc-1"},
		{uriScheme + "sources/doc-1", ""},
		{"file://documents/doc-1", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, extractDocumentID(tt.uri), tt.uri)
	}
}
