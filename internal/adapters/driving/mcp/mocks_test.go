package mcp

import (
	"context"

	"github.com/caderno-labs/caderno-cli/internal/core/domain"
	"github.com/caderno-labs/caderno-cli/internal/core/ports/driven"
	"github.com/caderno-labs/caderno-cli/internal/core/ports/driving"
)

type mockAnswerService struct {
	answer    string
	answerErr error
	retrieved domain.RetrievalResult
}

var _ driving.AnswerService = (*mockAnswerService)(nil)

func (m *mockAnswerService) Answer(_ context.Context, _ domain.Query) (string, error) {
	if m.answerErr != nil {
		return "", m.answerErr
	}
	return m.answer, nil
}

func (m *mockAnswerService) AnswerStream(_ context.Context, _ domain.Query) (*domain.AnswerStream, error) {
	stream := domain.NewAnswerStream(nil)
	answer := m.answer
	go func() {
		stream.Emit(domain.Token{Content: answer})
		stream.Finish()
	}()
	return stream, nil
}

func (m *mockAnswerService) Retrieve(_ context.Context, _ domain.Query) (domain.RetrievalResult, error) {
	if m.answerErr != nil {
		return domain.RetrievalResult{}, m.answerErr
	}
	return m.retrieved, nil
}

type mockSourceService struct {
	sources []domain.Source
	listErr error
}

var _ driving.SourceService = (*mockSourceService)(nil)

func (m *mockSourceService) Add(_ context.Context, name, path string) (*domain.Source, error) {
	return &domain.Source{ID: "src-1", Name: name, Path: path}, nil
}

func (m *mockSourceService) List(_ context.Context) ([]domain.Source, error) {
	return m.sources, m.listErr
}

func (m *mockSourceService) Remove(_ context.Context, _ string) error {
	return nil
}

// mockDocumentStore implements only the reads the resources need.
type mockDocumentStore struct {
	docs map[string]*domain.Document
}

var _ driven.DocumentStore = (*mockDocumentStore)(nil)

func (m *mockDocumentStore) SaveDocument(_ context.Context, _ *domain.Document) error { return nil }

func (m *mockDocumentStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	doc, ok := m.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return doc, nil
}

func (m *mockDocumentStore) GetDocumentByURI(_ context.Context, _, _ string) (*domain.Document, error) {
	return nil, domain.ErrNotFound
}

func (m *mockDocumentStore) ListDocuments(_ context.Context, sourceID string) ([]domain.Document, error) {
	var out []domain.Document
	for _, doc := range m.docs {
		if sourceID == "" || doc.SourceID == sourceID {
			out = append(out, *doc)
		}
	}
	return out, nil
}

func (m *mockDocumentStore) SaveChunks(_ context.Context, _ []domain.Chunk) error { return nil }

func (m *mockDocumentStore) GetChunks(_ context.Context, _ string) ([]domain.Chunk, error) {
	return nil, nil
}

func (m *mockDocumentStore) GetChunk(_ context.Context, _ string) (*domain.Chunk, error) {
	return nil, domain.ErrNotFound
}

func (m *mockDocumentStore) HasChunk(_ context.Context, _ string) (bool, error) { return false, nil }

func (m *mockDocumentStore) ChunkCount(_ context.Context) (int, error) { return 0, nil }

func (m *mockDocumentStore) SampleChunks(_ context.Context, _ int) ([]domain.Chunk, error) {
	return nil, nil
}

func (m *mockDocumentStore) DeleteChunks(_ context.Context, _ []string) error { return nil }

func (m *mockDocumentStore) DeleteDocument(_ context.Context, _ string) error { return nil }
