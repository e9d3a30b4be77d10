package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or both (user-editable files with embedded defaults).
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a
	// sensible default or an error, depending on whether the prompt
	// is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next
	// access. Useful when prompts have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
// These constants define the contract between prompt consumers and providers.
const (
	// PromptAnswer grounds an answer in retrieved document context.
	// The template carries {context} and {question} placeholders.
	PromptAnswer = "answer"

	// PromptAnswerNoContext answers without document grounding.
	// The template carries a {question} placeholder only.
	PromptAnswerNoContext = "answer_no_context"

	// PromptQueryRewrite condenses a question plus conversation
	// history into a standalone query. The template expects %s
	// (history) and %s (question) placeholders.
	PromptQueryRewrite = "query_rewrite"

	// PromptFlashcards generates question/answer pairs from content.
	// The template expects %d (card count) and %s (content)
	// placeholders.
	PromptFlashcards = "flashcards"

	// PromptMindMapConcepts extracts key concepts from content.
	// The template expects a %s (content) placeholder.
	PromptMindMapConcepts = "mindmap_concepts"

	// PromptMindMapDescribe produces short bullet points for one
	// concept. The template expects %s (concept) and %s (content)
	// placeholders.
	PromptMindMapDescribe = "mindmap_describe"
)
