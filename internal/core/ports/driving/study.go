package driving

import (
	"context"

	"github.com/caderno-labs/caderno-cli/internal/core/domain"
)

// StudyService generates study aids from indexed content through the
// same generation client the answer pipeline uses.
type StudyService interface {
	// GenerateFlashcards produces n question/answer pairs from
	// indexed content and persists them. n is clamped into the
	// supported range.
	GenerateFlashcards(ctx context.Context, n int) ([]domain.Flashcard, error)

	// ListFlashcards returns previously generated cards, newest first.
	ListFlashcards(ctx context.Context) ([]domain.Flashcard, error)

	// BuildMindMap extracts key concepts from indexed content and
	// renders them as markmap-compatible markdown.
	BuildMindMap(ctx context.Context) (*domain.MindMap, error)
}
