package driven

import (
	"context"

	"github.com/caderno-labs/caderno-cli/internal/core/domain"
)

// LLMService provides text generation against a locally hosted model.
//
// Implementations may include:
//   - Ollama (local models)
//   - LM Studio (local inference server)
type LLMService interface {
	// Generate produces a full completion for a prompt, blocking until
	// the response is assembled. Returns a
	// domain.ErrGenerationUnavailable wrap when the endpoint cannot be
	// reached; no internal retries.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// GenerateStream produces an incremental token stream for a prompt.
	// Tokens are delivered in generation order; closing the stream
	// releases the underlying connection. The stream ends with
	// domain.ErrGenerationTimeout when no token arrives within the
	// configured inactivity window.
	GenerateStream(ctx context.Context, prompt string, opts GenerateOptions) (*domain.AnswerStream, error)

	// RewriteQuery condenses a question plus conversation history into
	// a standalone search query.
	RewriteQuery(ctx context.Context, query string, history []domain.ChatMessage) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight
	// test request. Used at startup to fail before first use.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic).
	Temperature float64

	// StopWords are sequences that stop generation when encountered.
	StopWords []string
}
