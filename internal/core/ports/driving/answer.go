package driving

import (
	"context"

	"github.com/caderno-labs/caderno-cli/internal/core/domain"
)

// AnswerService is the retrieval-augmented answer pipeline:
// question in, answer out. Each call performs retrieval exactly once;
// nothing is cached across calls and concurrent calls are independent.
type AnswerService interface {
	// Answer runs the pipeline in blocking mode and returns the full
	// response text.
	Answer(ctx context.Context, query domain.Query) (string, error)

	// AnswerStream runs the pipeline in streaming mode. The caller
	// owns the returned stream and must drain or close it; closing
	// releases the generation connection.
	AnswerStream(ctx context.Context, query domain.Query) (*domain.AnswerStream, error)

	// Retrieve runs only the retrieval stage, returning the ranked
	// chunks the pipeline would ground an answer in.
	Retrieve(ctx context.Context, query domain.Query) (domain.RetrievalResult, error)
}
