package driven

import (
	"context"

	"github.com/caderno-labs/caderno-cli/internal/core/domain"
)

// ChatStore persists conversation history. The retriever folds recent
// turns into query rewriting; the UI replays them.
type ChatStore interface {
	// SaveMessage appends a message to a conversation.
	SaveMessage(ctx context.Context, msg domain.ChatMessage) error

	// RecentMessages returns the last n messages of a conversation,
	// oldest first.
	RecentMessages(ctx context.Context, conversationID string, n int) ([]domain.ChatMessage, error)

	// ClearConversation removes all messages of a conversation.
	ClearConversation(ctx context.Context, conversationID string) error
}

// FlashcardStore persists generated flashcards.
type FlashcardStore interface {
	// SaveCards stores a batch of flashcards.
	SaveCards(ctx context.Context, cards []domain.Flashcard) error

	// ListCards returns all stored flashcards, newest first.
	ListCards(ctx context.Context) ([]domain.Flashcard, error)

	// DeleteCard removes a flashcard.
	DeleteCard(ctx context.Context, id string) error
}
