package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/caderno-labs/caderno-cli/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads LLM prompts from user-editable files on disk.
// Prompts are loaded from a configurable directory with fallback to embedded defaults.
//
// The store uses lazy initialisation - files are only created when first accessed,
// not in the constructor. This makes testing easier and avoids unexpected I/O.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// defaultPrompts contains embedded default prompts.
// These are used when user files don't exist and as the initial content for new files.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptAnswer: `You are a highly knowledgeable assistant designed to answer questions based on extracted content from PDF documents. Your goal is to provide accurate, detailed, and easy-to-understand answers using only the provided context.

Your response must:
1. Be thorough and relevant to the provided context
2. Use direct quotes or references from the context when appropriate
3. Clarify complex or technical terms in simple language when needed
4. Organize your response using bullet points, numbered lists, or clear headings if multiple ideas are involved
5. Avoid assuming facts that are not in the context—even if they seem obvious
6. Maintain a formal and informative tone suitable for academic, business, or technical users
7. Correctly interpret tables, diagrams, or OCR text when present in the context
8. Ignore unrelated or noisy data often found in PDFs (e.g. headers, footers, page numbers)

Context:
{context}

Question:
{question}

Detailed Answer (provide a thorough explanation using only the information from the context):`,

	driven.PromptAnswerNoContext: `You are a highly knowledgeable assistant designed to answer questions based on extracted content from PDF documents. No indexed material matched this question, so answer from general knowledge and state clearly that the answer is not grounded in the user's documents.

Your response must:
1. Clarify complex or technical terms in simple language when needed
2. Organize your response using bullet points, numbered lists, or clear headings if multiple ideas are involved
3. Maintain a formal and informative tone suitable for academic, business, or technical users

Question:
{question}

Detailed Answer:`,

	driven.PromptQueryRewrite: `Given the conversation below, rewrite the final question as a standalone
question that can be understood without the conversation.
Return ONLY the rewritten question, nothing else.

Conversation:
%s

Final question: %s
Standalone question:`,

	driven.PromptFlashcards: `Create exactly %d flashcards from the study material below.
Format each card as two lines, with one blank line between cards:
Q: <question>
A: <answer>

Return ONLY the cards, nothing else.

Material:
%s`,

	driven.PromptMindMapConcepts: `List the key concepts in the study material below, one per line,
most important first. Return ONLY the list, nothing else.

Material:
%s`,

	driven.PromptMindMapDescribe: `Write two or three short bullet points about "%s" based on the study
material below. Each bullet starts with "- ". Return ONLY the bullets.

Material:
%s`,
}

// NewPromptStore creates a new file-based prompt store.
// If promptDir is empty, defaults to ~/.caderno/prompts/.
//
// The constructor does not perform any I/O - directory creation and
// file writes happen lazily on first Load() call.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(home, ".caderno", "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the prompt template for the given name.
// On first call, initialises the prompt directory and creates default files.
// Returns cached value if available, otherwise loads from file.
// Falls back to embedded default if file doesn't exist.
func (s *PromptStore) Load(name string) (string, error) {
	// Ensure directory and defaults exist (lazy init)
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		// Fall back to embedded defaults if init failed
		if prompt, ok := defaultPrompts[name]; ok {
			return prompt, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	// Check cache first (read lock)
	s.mu.RLock()
	if prompt, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return prompt, nil
	}
	s.mu.RUnlock()

	// Load from file (no lock held during I/O)
	prompt, err := s.loadFromFile(name)
	if err != nil {
		// Fall back to embedded default
		if defaultPrompt, ok := defaultPrompts[name]; ok {
			return defaultPrompt, nil
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	// Cache the result (write lock)
	// Use double-check pattern to avoid overwriting concurrent loads
	s.mu.Lock()
	if _, ok := s.cache[name]; !ok {
		s.cache[name] = prompt
	} else {
		// Another goroutine loaded it first, use their value
		prompt = s.cache[name]
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// initialise creates the prompt directory and default files.
// Called once via sync.Once on first Load().
func (s *PromptStore) initialise() {
	// Create directory
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	// Create default prompt files (only if they don't exist)
	for name, content := range defaultPrompts {
		path := filepath.Join(s.promptDir, name+".txt")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
				return
			}
		}
	}

	// Create README
	if err := s.createReadme(); err != nil {
		s.initErr = err
	}
}

// loadFromFile reads a prompt from disk.
func (s *PromptStore) loadFromFile(name string) (string, error) {
	path := filepath.Join(s.promptDir, name+".txt")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// createReadme writes a README file explaining the prompts directory.
func (s *PromptStore) createReadme() error {
	path := filepath.Join(s.promptDir, "README.md")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil // Already exists or stat error (ignore)
	}

	content := `# Caderno Prompts

This directory contains customisable prompts used by Caderno's LLM features.

## Files

- ` + "`answer.txt`" + ` - Answers a question grounded in retrieved context
- ` + "`answer_no_context.txt`" + ` - Answers when no indexed material matched
- ` + "`query_rewrite.txt`" + ` - Condenses a conversation into a standalone question
- ` + "`flashcards.txt`" + ` - Generates question/answer study cards
- ` + "`mindmap_concepts.txt`" + ` - Extracts key concepts for the mind map
- ` + "`mindmap_describe.txt`" + ` - Expands one concept into bullet points

## Customisation

Edit any file to customise LLM behaviour. Changes take effect on the next
command.

## Placeholders

The answer prompts use named placeholders that must be preserved:
- ` + "`{context}`" + ` - The retrieved document excerpts
- ` + "`{question}`" + ` - The user's question

The remaining prompts use Go fmt placeholders:
- ` + "`%s`" + ` - String (e.g., the content or concept)
- ` + "`%d`" + ` - Integer (e.g., the card count)

Ensure customised prompts maintain placeholders in the correct positions.
`
	return os.WriteFile(path, []byte(content), 0600)
}
