package domain

import "time"

// ChatMessage is a single turn in a conversation.
type ChatMessage struct {
	// ID is the unique identifier for the message.
	ID string

	// ConversationID groups messages into one conversation.
	ConversationID string

	// Role is "user" or "assistant".
	Role string

	// Content is the message text.
	Content string

	// CreatedAt is when the message was recorded.
	CreatedAt time.Time
}

// Conversation roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Query is a user question plus optional conversation history.
// Queries are ephemeral: one is created per request and never stored.
type Query struct {
	// Text is the raw question.
	Text string

	// History holds recent conversation turns, oldest first.
	// May be empty for a standalone question.
	History []ChatMessage
}

// RetrievedChunk pairs a chunk with its similarity score for one query.
type RetrievedChunk struct {
	// Chunk is the matched chunk.
	Chunk Chunk

	// Score is the cosine similarity to the query, higher is better.
	Score float64

	// DocumentTitle is the title of the owning document, for citation.
	DocumentTitle string
}

// RetrievalResult is the ordered set of chunks judged most relevant
// to a query, best match first. It is ephemeral: produced by the
// retriever and consumed once by the prompt composer.
type RetrievalResult struct {
	// Chunks are ordered by descending similarity. Ties are broken
	// by insertion order, earliest first.
	Chunks []RetrievedChunk

	// Rewritten is the query text actually used for retrieval, which
	// may differ from the original when history was folded in.
	Rewritten string
}

// Empty reports whether retrieval found no context.
// An empty result is a valid, answerable state: the composer falls
// back to the context-free template.
func (r RetrievalResult) Empty() bool {
	return len(r.Chunks) == 0
}

// Prompt is the composed text sent to the language model.
// It is ephemeral and consumed exactly once.
type Prompt struct {
	// Text is the full prompt after template substitution.
	Text string

	// ContextFree is true when no retrieved chunks were used.
	ContextFree bool
}
