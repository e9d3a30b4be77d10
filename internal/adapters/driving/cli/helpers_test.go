package cli

import (
	"context"
	"time"

	"github.com/caderno-labs/caderno-cli/internal/core/domain"
	"github.com/caderno-labs/caderno-cli/internal/core/ports/driven"
	"github.com/caderno-labs/caderno-cli/internal/core/ports/driving"
)

// setupTestServices installs mock services and returns a cleanup that
// restores the previous wiring.
func setupTestServices() func() {
	prevAnswer := answerService
	prevSource := sourceService
	prevIngest := ingestOrchestrator
	prevStudy := studyService
	prevConfig := configStore
	prevChat := chatStore
	prevDocs := documentStore

	answerService = &mockAnswerService{}
	sourceService = &mockSourceService{}
	ingestOrchestrator = &mockIngestOrchestrator{}
	studyService = &mockStudyService{}
	configStore = newMockConfigStore()
	chatStore = &mockChatStore{}
	documentStore = nil

	return func() {
		answerService = prevAnswer
		sourceService = prevSource
		ingestOrchestrator = prevIngest
		studyService = prevStudy
		configStore = prevConfig
		chatStore = prevChat
		documentStore = prevDocs
	}
}

type mockAnswerService struct {
	answer     string
	answerErr  error
	retrieved  domain.RetrievalResult
	lastQuery  domain.Query
	streamToks []string
}

var _ driving.AnswerService = (*mockAnswerService)(nil)

func (m *mockAnswerService) Answer(_ context.Context, query domain.Query) (string, error) {
	m.lastQuery = query
	if m.answerErr != nil {
		return "", m.answerErr
	}
	if m.answer == "" {
		return "mock answer", nil
	}
	return m.answer, nil
}

func (m *mockAnswerService) AnswerStream(_ context.Context, query domain.Query) (*domain.AnswerStream, error) {
	m.lastQuery = query
	if m.answerErr != nil {
		return nil, m.answerErr
	}

	toks := m.streamToks
	if len(toks) == 0 {
		toks = []string{"mock ", "answer"}
	}

	stream := domain.NewAnswerStream(nil)
	go func() {
		for _, t := range toks {
			if !stream.Emit(domain.Token{Content: t}) {
				return
			}
		}
		stream.Finish()
	}()
	return stream, nil
}

func (m *mockAnswerService) Retrieve(_ context.Context, query domain.Query) (domain.RetrievalResult, error) {
	m.lastQuery = query
	return m.retrieved, nil
}

type mockSourceService struct {
	sources   []domain.Source
	addErr    error
	removed   []string
	removeErr error
	lastCtx   context.Context
}

var _ driving.SourceService = (*mockSourceService)(nil)

func (m *mockSourceService) Add(ctx context.Context, name, path string) (*domain.Source, error) {
	m.lastCtx = ctx
	if m.addErr != nil {
		return nil, m.addErr
	}
	src := domain.Source{ID: "src-1", Name: name, Path: path, CreatedAt: time.Now()}
	m.sources = append(m.sources, src)
	return &src, nil
}

func (m *mockSourceService) List(_ context.Context) ([]domain.Source, error) {
	return m.sources, nil
}

func (m *mockSourceService) Remove(_ context.Context, id string) error {
	if m.removeErr != nil {
		return m.removeErr
	}
	m.removed = append(m.removed, id)
	return nil
}

type mockIngestOrchestrator struct {
	report    driving.IngestReport
	ingestErr error
	reindexed int
	ingested  []string
}

var _ driving.IngestOrchestrator = (*mockIngestOrchestrator)(nil)

func (m *mockIngestOrchestrator) Ingest(_ context.Context, sourceID string) (*driving.IngestReport, error) {
	if m.ingestErr != nil {
		return nil, m.ingestErr
	}
	m.ingested = append(m.ingested, sourceID)
	report := m.report
	report.SourceID = sourceID
	return &report, nil
}

func (m *mockIngestOrchestrator) IngestAll(ctx context.Context) ([]driving.IngestReport, error) {
	report, err := m.Ingest(ctx, "all")
	if err != nil {
		return nil, err
	}
	return []driving.IngestReport{*report}, nil
}

func (m *mockIngestOrchestrator) Status(_ context.Context, sourceID string) (*driving.IngestStatus, error) {
	return &driving.IngestStatus{SourceID: sourceID}, nil
}

func (m *mockIngestOrchestrator) Watch(ctx context.Context, _ string) error {
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockIngestOrchestrator) Reindex(_ context.Context) (int, error) {
	return m.reindexed, nil
}

type mockStudyService struct {
	cards   []domain.Flashcard
	mindMap domain.MindMap
	genErr  error
	lastN   int
}

var _ driving.StudyService = (*mockStudyService)(nil)

func (m *mockStudyService) GenerateFlashcards(_ context.Context, n int) ([]domain.Flashcard, error) {
	m.lastN = n
	if m.genErr != nil {
		return nil, m.genErr
	}
	if len(m.cards) == 0 {
		return []domain.Flashcard{{ID: "c1", Question: "What is entropy?", Answer: "A measure of disorder."}}, nil
	}
	return m.cards, nil
}

func (m *mockStudyService) ListFlashcards(_ context.Context) ([]domain.Flashcard, error) {
	return m.cards, nil
}

func (m *mockStudyService) BuildMindMap(_ context.Context) (*domain.MindMap, error) {
	if m.genErr != nil {
		return nil, m.genErr
	}
	mm := m.mindMap
	if mm.Markdown == "" {
		mm = domain.MindMap{
			Markdown: "---\nmarkmap:\n  colorFreezeLevel: 2\n---\n\n# Study Notes\n\n## Entropy\n",
			Concepts: []string{"Entropy"},
		}
	}
	return &mm, nil
}

type mockConfigStore struct {
	values map[string]any
}

var _ driven.ConfigStore = (*mockConfigStore)(nil)

func newMockConfigStore() *mockConfigStore {
	return &mockConfigStore{values: make(map[string]any)}
}

func (m *mockConfigStore) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *mockConfigStore) GetString(key string) string {
	if v, ok := m.values[key].(string); ok {
		return v
	}
	return ""
}

func (m *mockConfigStore) GetInt(key string) int {
	switch v := m.values[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	}
	return 0
}

func (m *mockConfigStore) GetBool(key string) bool {
	v, _ := m.values[key].(bool)
	return v
}

func (m *mockConfigStore) Set(key string, value any) error {
	m.values[key] = value
	return nil
}

func (m *mockConfigStore) Delete(key string) error {
	delete(m.values, key)
	return nil
}

func (m *mockConfigStore) Keys() []string {
	keys := make([]string, 0, len(m.values))
	for k := range m.values {
		keys = append(keys, k)
	}
	return keys
}

type mockChatStore struct {
	messages []domain.ChatMessage
	cleared  []string
}

var _ driven.ChatStore = (*mockChatStore)(nil)

func (m *mockChatStore) SaveMessage(_ context.Context, msg domain.ChatMessage) error {
	m.messages = append(m.messages, msg)
	return nil
}

func (m *mockChatStore) RecentMessages(_ context.Context, conversationID string, n int) ([]domain.ChatMessage, error) {
	var out []domain.ChatMessage
	for _, msg := range m.messages {
		if msg.ConversationID == conversationID {
			out = append(out, msg)
		}
	}
	if len(out) > n {
		out = out[len(out)-n:]
	}
	return out, nil
}

func (m *mockChatStore) ClearConversation(_ context.Context, conversationID string) error {
	m.cleared = append(m.cleared, conversationID)
	var kept []domain.ChatMessage
	for _, msg := range m.messages {
		if msg.ConversationID != conversationID {
			kept = append(kept, msg)
		}
	}
	m.messages = kept
	return nil
}
