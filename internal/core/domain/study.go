package domain

import "time"

// Flashcard is a question/answer pair generated from indexed content.
type Flashcard struct {
	// ID is the unique identifier for the card.
	ID string

	// Question is the front of the card.
	Question string

	// Answer is the back of the card.
	Answer string

	// DocumentID links to the document the card was generated from.
	// Empty when the card was generated from mixed content.
	DocumentID string

	// CreatedAt is when the card was generated.
	CreatedAt time.Time
}

// Flashcard generation bounds. The request count is clamped into
// [MinFlashcards, MaxFlashcards].
const (
	MinFlashcards     = 3
	MaxFlashcards     = 20
	DefaultFlashcards = 5
)

// ClampFlashcardCount normalises a requested card count into the
// supported range, mapping zero to the default.
func ClampFlashcardCount(n int) int {
	switch {
	case n == 0:
		return DefaultFlashcards
	case n < MinFlashcards:
		return MinFlashcards
	case n > MaxFlashcards:
		return MaxFlashcards
	default:
		return n
	}
}

// MindMap is a markmap-compatible markdown rendering of the key
// concepts extracted from indexed content. Rendering the markdown is
// the UI's concern; the domain only carries the text.
type MindMap struct {
	// Markdown is the markmap document, including front matter.
	Markdown string

	// Concepts is the list of top-level concepts, in output order.
	Concepts []string

	// GeneratedAt is when the map was built.
	GeneratedAt time.Time
}
