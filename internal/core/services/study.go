package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/caderno-labs/caderno-cli/internal/core/domain"
	"github.com/caderno-labs/caderno-cli/internal/core/ports/driven"
	"github.com/caderno-labs/caderno-cli/internal/core/ports/driving"
	"github.com/caderno-labs/caderno-cli/internal/logger"
)

// studySampleChunks bounds how much indexed content is fed to the
// model when generating study aids.
const studySampleChunks = 12

// mindMapMaxConcepts bounds the breadth of a generated mind map.
const mindMapMaxConcepts = 8

// Ensure StudyService implements the interface.
var _ driving.StudyService = (*StudyService)(nil)

// StudyService generates flashcards and mind maps from indexed
// content, using the same generation client as the answer pipeline.
type StudyService struct {
	docStore driven.DocumentStore
	cards    driven.FlashcardStore
	llm      driven.LLMService
	prompts  driven.PromptStore
	opts     driven.GenerateOptions
}

// NewStudyService creates a StudyService.
func NewStudyService(
	docStore driven.DocumentStore,
	cards driven.FlashcardStore,
	llm driven.LLMService,
	prompts driven.PromptStore,
	opts driven.GenerateOptions,
) *StudyService {
	return &StudyService{
		docStore: docStore,
		cards:    cards,
		llm:      llm,
		prompts:  prompts,
		opts:     opts,
	}
}

// GenerateFlashcards produces n question/answer cards from a sample of
// indexed content and persists them. n is clamped into the supported
// range; zero selects the default.
func (s *StudyService) GenerateFlashcards(ctx context.Context, n int) ([]domain.Flashcard, error) {
	n = domain.ClampFlashcardCount(n)

	content, err := s.sampleContent(ctx)
	if err != nil {
		return nil, err
	}

	template, err := s.prompts.Load(driven.PromptFlashcards)
	if err != nil {
		return nil, fmt.Errorf("load flashcard prompt: %w", err)
	}
	prompt := fmt.Sprintf(template, n, content)

	response, err := s.llm.Generate(ctx, prompt, s.opts)
	if err != nil {
		return nil, fmt.Errorf("generating flashcards: %w", err)
	}

	cards := parseFlashcards(response)
	if len(cards) == 0 {
		return nil, fmt.Errorf("%w: model response contained no Q/A pairs", domain.ErrInvalidInput)
	}
	if len(cards) > n {
		cards = cards[:n]
	}

	if err := s.cards.SaveCards(ctx, cards); err != nil {
		return nil, fmt.Errorf("save flashcards: %w", err)
	}

	logger.Info("Generated %d flashcards", len(cards))
	return cards, nil
}

// ListFlashcards returns previously generated cards, newest first.
func (s *StudyService) ListFlashcards(ctx context.Context) ([]domain.Flashcard, error) {
	return s.cards.ListCards(ctx)
}

// BuildMindMap extracts key concepts from indexed content and renders
// them as a markmap document. Each concept gets a short description
// from a follow-up generation.
func (s *StudyService) BuildMindMap(ctx context.Context) (*domain.MindMap, error) {
	content, err := s.sampleContent(ctx)
	if err != nil {
		return nil, err
	}

	conceptsTemplate, err := s.prompts.Load(driven.PromptMindMapConcepts)
	if err != nil {
		return nil, fmt.Errorf("load concepts prompt: %w", err)
	}
	response, err := s.llm.Generate(ctx, fmt.Sprintf(conceptsTemplate, content), s.opts)
	if err != nil {
		return nil, fmt.Errorf("extracting concepts: %w", err)
	}

	concepts := parseConcepts(response)
	if len(concepts) == 0 {
		return nil, fmt.Errorf("%w: model response contained no concepts", domain.ErrInvalidInput)
	}
	if len(concepts) > mindMapMaxConcepts {
		concepts = concepts[:mindMapMaxConcepts]
	}

	describeTemplate, err := s.prompts.Load(driven.PromptMindMapDescribe)
	if err != nil {
		return nil, fmt.Errorf("load describe prompt: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("---\n")
	sb.WriteString("markmap:\n")
	sb.WriteString("  colorFreezeLevel: 2\n")
	sb.WriteString("---\n\n")
	sb.WriteString("# Study Notes\n\n")

	for _, concept := range concepts {
		sb.WriteString("## " + concept + "\n\n")

		details, err := s.llm.Generate(ctx, fmt.Sprintf(describeTemplate, concept, content), s.opts)
		if err != nil {
			// A failed branch leaves the concept as a bare node
			// rather than failing the whole map.
			logger.Warn("mind map: describing %q failed: %v", concept, err)
			continue
		}
		for _, point := range parseConcepts(details) {
			sb.WriteString("- " + point + "\n")
		}
		sb.WriteString("\n")
	}

	return &domain.MindMap{
		Markdown:    sb.String(),
		Concepts:    concepts,
		GeneratedAt: time.Now(),
	}, nil
}

// sampleContent joins a sample of stored chunks into one context blob.
func (s *StudyService) sampleContent(ctx context.Context) (string, error) {
	chunks, err := s.docStore.SampleChunks(ctx, studySampleChunks)
	if err != nil {
		return "", fmt.Errorf("sample chunks: %w", err)
	}
	if len(chunks) == 0 {
		return "", fmt.Errorf("no indexed content: %w", domain.ErrNoContext)
	}

	parts := make([]string, len(chunks))
	for i, chunk := range chunks {
		parts[i] = chunk.Content
	}
	return strings.Join(parts, ChunkDelimiter), nil
}

// parseFlashcards extracts Q:/A: pairs from a model response.
// Lines outside a pair are ignored, which tolerates preambles and
// numbering the model adds despite the prompt.
func parseFlashcards(response string) []domain.Flashcard {
	var cards []domain.Flashcard
	var question string

	flush := func(answer string) {
		if question == "" || answer == "" {
			return
		}
		cards = append(cards, domain.Flashcard{
			ID:        uuid.NewString(),
			Question:  question,
			Answer:    answer,
			CreatedAt: time.Now(),
		})
		question = ""
	}

	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "Q:"):
			question = strings.TrimSpace(strings.TrimPrefix(line, "Q:"))
		case strings.HasPrefix(line, "A:"):
			flush(strings.TrimSpace(strings.TrimPrefix(line, "A:")))
		}
	}
	return cards
}

// parseConcepts extracts one item per non-empty line, stripping list
// markers the model tends to emit.
func parseConcepts(response string) []string {
	var items []string
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "- ")
		line = strings.TrimPrefix(line, "* ")
		line = strings.TrimSpace(strings.TrimLeft(line, "0123456789."))
		if line == "" {
			continue
		}
		items = append(items, line)
	}
	return items
}
