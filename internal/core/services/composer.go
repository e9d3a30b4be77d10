package services

import (
	"fmt"
	"strings"

	"github.com/caderno-labs/caderno-cli/internal/core/domain"
	"github.com/caderno-labs/caderno-cli/internal/core/ports/driven"
)

// ChunkDelimiter separates chunk texts inside the {context} block.
const ChunkDelimiter = "\n\n"

// Placeholders recognised in answer templates.
const (
	placeholderContext  = "{context}"
	placeholderQuestion = "{question}"
)

// PromptComposer merges retrieved context and the user question into a
// single prompt using a fixed template. Composition is pure: the same
// query and retrieval result always yield byte-identical output.
//
// Templates are parsed once at construction. Substitution splices data
// between pre-parsed template segments, so chunk content is opaque
// data: a chunk containing "{question}" is copied through literally,
// never treated as a further template directive.
type PromptComposer struct {
	grounded    promptTemplate
	contextFree promptTemplate
}

// promptTemplate is a template split at its placeholders.
type promptTemplate struct {
	segments     []string
	placeholders []string // placeholder following segments[i], "" for the last
}

// NewPromptComposer loads and validates both answer templates.
// A template missing a required placeholder is a configuration error
// and fails here, at startup, never per-request.
func NewPromptComposer(prompts driven.PromptStore) (*PromptComposer, error) {
	groundedText, err := prompts.Load(driven.PromptAnswer)
	if err != nil {
		return nil, fmt.Errorf("load answer template: %w", err)
	}
	contextFreeText, err := prompts.Load(driven.PromptAnswerNoContext)
	if err != nil {
		return nil, fmt.Errorf("load context-free answer template: %w", err)
	}

	grounded, err := parseTemplate(groundedText, placeholderContext, placeholderQuestion)
	if err != nil {
		return nil, fmt.Errorf("answer template: %w", err)
	}
	contextFree, err := parseTemplate(contextFreeText, placeholderQuestion)
	if err != nil {
		return nil, fmt.Errorf("context-free answer template: %w", err)
	}

	return &PromptComposer{grounded: grounded, contextFree: contextFree}, nil
}

// Compose builds the prompt for a query and its retrieval result.
// An empty retrieval result selects the context-free template.
func (c *PromptComposer) Compose(query domain.Query, result domain.RetrievalResult) domain.Prompt {
	if result.Empty() {
		return domain.Prompt{
			Text:        c.contextFree.render(map[string]string{placeholderQuestion: query.Text}),
			ContextFree: true,
		}
	}

	texts := make([]string, len(result.Chunks))
	for i := range result.Chunks {
		texts[i] = result.Chunks[i].Chunk.Content
	}

	return domain.Prompt{
		Text: c.grounded.render(map[string]string{
			placeholderContext:  strings.Join(texts, ChunkDelimiter),
			placeholderQuestion: query.Text,
		}),
	}
}

// parseTemplate splits text at each required placeholder.
// Every placeholder must appear exactly once.
func parseTemplate(text string, required ...string) (promptTemplate, error) {
	for _, ph := range required {
		if n := strings.Count(text, ph); n != 1 {
			return promptTemplate{}, fmt.Errorf("%w: placeholder %s appears %d times, want 1",
				domain.ErrTemplateInvalid, ph, n)
		}
	}

	tmpl := promptTemplate{segments: []string{text}}
	for _, ph := range required {
		tmpl = tmpl.split(ph)
	}
	return tmpl, nil
}

// split divides the segment containing ph into two around it.
func (t promptTemplate) split(ph string) promptTemplate {
	out := promptTemplate{}
	for i, seg := range t.segments {
		idx := strings.Index(seg, ph)
		if idx < 0 {
			out.segments = append(out.segments, seg)
			if i < len(t.placeholders) {
				out.placeholders = append(out.placeholders, t.placeholders[i])
			}
			continue
		}
		out.segments = append(out.segments, seg[:idx], seg[idx+len(ph):])
		out.placeholders = append(out.placeholders, ph)
		if i < len(t.placeholders) {
			out.placeholders = append(out.placeholders, t.placeholders[i])
		}
	}
	return out
}

// render joins segments with placeholder values spliced in between.
// Values are copied verbatim and never re-scanned for placeholders.
func (t promptTemplate) render(values map[string]string) string {
	var sb strings.Builder
	for i, seg := range t.segments {
		sb.WriteString(seg)
		if i < len(t.placeholders) {
			sb.WriteString(values[t.placeholders[i]])
		}
	}
	return sb.String()
}
