package services

import (
	"context"
	"fmt"

	"github.com/caderno-labs/caderno-cli/internal/core/domain"
	"github.com/caderno-labs/caderno-cli/internal/core/ports/driven"
	"github.com/caderno-labs/caderno-cli/internal/core/ports/driving"
	"github.com/caderno-labs/caderno-cli/internal/logger"
)

// ChunkRetriever is the retrieval stage of the answer pipeline.
type ChunkRetriever interface {
	Retrieve(ctx context.Context, query domain.Query) (domain.RetrievalResult, error)
}

// AnswerPipeline wires retrieval, prompt composition and generation
// into the question-answering flow. Each call retrieves exactly once;
// nothing is cached between calls, so concurrent calls are independent.
type AnswerPipeline struct {
	retriever ChunkRetriever
	composer  *PromptComposer
	llm       driven.LLMService

	// allowEmptyContext permits answering from model knowledge alone
	// when retrieval finds nothing. When false, an empty retrieval
	// fails with domain.ErrNoContext instead.
	allowEmptyContext bool

	opts driven.GenerateOptions
}

var _ driving.AnswerService = (*AnswerPipeline)(nil)

// NewAnswerPipeline creates an AnswerPipeline.
func NewAnswerPipeline(
	retriever ChunkRetriever,
	composer *PromptComposer,
	llm driven.LLMService,
	allowEmptyContext bool,
	opts driven.GenerateOptions,
) *AnswerPipeline {
	return &AnswerPipeline{
		retriever:         retriever,
		composer:          composer,
		llm:               llm,
		allowEmptyContext: allowEmptyContext,
		opts:              opts,
	}
}

// Answer runs the pipeline in blocking mode and returns the full
// response text.
func (p *AnswerPipeline) Answer(ctx context.Context, query domain.Query) (string, error) {
	prompt, err := p.compose(ctx, query)
	if err != nil {
		return "", err
	}

	answer, err := p.llm.Generate(ctx, prompt.Text, p.opts)
	if err != nil {
		return "", fmt.Errorf("generating answer: %w", err)
	}
	return answer, nil
}

// AnswerStream runs the pipeline in streaming mode. The caller owns
// the returned stream and must drain or close it.
func (p *AnswerPipeline) AnswerStream(ctx context.Context, query domain.Query) (*domain.AnswerStream, error) {
	prompt, err := p.compose(ctx, query)
	if err != nil {
		return nil, err
	}

	stream, err := p.llm.GenerateStream(ctx, prompt.Text, p.opts)
	if err != nil {
		return nil, fmt.Errorf("starting generation: %w", err)
	}
	return stream, nil
}

// Retrieve runs only the retrieval stage.
func (p *AnswerPipeline) Retrieve(ctx context.Context, query domain.Query) (domain.RetrievalResult, error) {
	return p.retriever.Retrieve(ctx, query)
}

func (p *AnswerPipeline) compose(ctx context.Context, query domain.Query) (domain.Prompt, error) {
	result, err := p.retriever.Retrieve(ctx, query)
	if err != nil {
		return domain.Prompt{}, fmt.Errorf("retrieving context: %w", err)
	}

	if result.Empty() && !p.allowEmptyContext {
		return domain.Prompt{}, fmt.Errorf("no relevant context found: %w", domain.ErrNoContext)
	}
	if result.Empty() {
		logger.Info("answer: no context retrieved, answering from model knowledge")
	} else {
		logger.Info("answer: grounding on %d chunks", len(result.Chunks))
	}

	return p.composer.Compose(query, result), nil
}
