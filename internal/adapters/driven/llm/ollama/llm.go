// Package ollama provides an LLM service adapter using Ollama.
package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/caderno-labs/caderno-cli/internal/core/domain"
	"github.com/caderno-labs/caderno-cli/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultBaseURL       = "http://localhost:11434"
	DefaultLLMModel      = "llama3.2"
	DefaultLLMTimeout    = 120 * time.Second
	DefaultStreamTimeout = 60 * time.Second
)

// maxStreamLine bounds one NDJSON line from the streaming endpoint.
const maxStreamLine = 1 << 20

// LLMConfig holds configuration for the Ollama LLM service.
type LLMConfig struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434).
	BaseURL string

	// Model is the LLM model to use (default: llama3.2).
	Model string

	// Timeout is the blocking request timeout (default: 120s).
	Timeout time.Duration

	// StreamTimeout is the inactivity window for streaming: when no
	// token arrives within it, the stream fails with
	// domain.ErrGenerationTimeout (default: 60s).
	StreamTimeout time.Duration
}

// LLMService provides text generation using Ollama.
type LLMService struct {
	client        *http.Client
	streamClient  *http.Client
	baseURL       string
	model         string
	streamTimeout time.Duration
	promptStore   driven.PromptStore
}

// generateRequest is the Ollama /api/generate request format.
type generateRequest struct {
	Model   string   `json:"model"`
	Prompt  string   `json:"prompt"`
	Stream  bool     `json:"stream"`
	Options *options `json:"options,omitempty"`
}

// options holds generation parameters.
type options struct {
	NumPredict  int      `json:"num_predict,omitempty"`
	Temperature float64  `json:"temperature,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}

// generateResponse is the Ollama /api/generate response format.
// In streaming mode one of these arrives per NDJSON line.
type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// NewLLMService creates a new Ollama LLM service.
func NewLLMService(cfg LLMConfig) *LLMService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}
	if cfg.StreamTimeout == 0 {
		cfg.StreamTimeout = DefaultStreamTimeout
	}

	return &LLMService{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		// The streaming client has no overall timeout; token
		// inactivity is watched per stream instead.
		streamClient:  &http.Client{},
		baseURL:       cfg.BaseURL,
		model:         cfg.Model,
		streamTimeout: cfg.StreamTimeout,
	}
}

// Generate produces text completion from a prompt, blocking until the
// full response is assembled.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	resp, err := s.postGenerate(ctx, s.client, prompt, opts, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	return genResp.Response, nil
}

// GenerateStream produces an incremental token stream for a prompt.
// Closing the returned stream cancels the underlying request.
func (s *LLMService) GenerateStream(ctx context.Context, prompt string, opts driven.GenerateOptions) (*domain.AnswerStream, error) {
	genCtx, cancel := context.WithCancel(ctx)

	resp, err := s.postGenerate(genCtx, s.streamClient, prompt, opts, true)
	if err != nil {
		cancel()
		return nil, err
	}

	stream := domain.NewAnswerStream(cancel)
	go s.pump(resp.Body, stream, cancel)
	return stream, nil
}

// pump reads NDJSON lines from the response body and feeds the stream.
// A watchdog cancels the request when no line arrives within the
// inactivity window.
func (s *LLMService) pump(body io.ReadCloser, stream *domain.AnswerStream, cancel context.CancelFunc) {
	defer body.Close()

	var timedOut atomic.Bool
	watchdog := time.AfterFunc(s.streamTimeout, func() {
		timedOut.Store(true)
		cancel()
	})
	defer watchdog.Stop()

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxStreamLine)

	for scanner.Scan() {
		watchdog.Reset(s.streamTimeout)

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var chunk generateResponse
		if err := json.Unmarshal(line, &chunk); err != nil {
			stream.Fail(fmt.Errorf("decode stream line: %w", err))
			return
		}

		if chunk.Response != "" {
			if !stream.Emit(domain.Token{Content: chunk.Response}) {
				// Consumer closed the stream; the cancelled request
				// will end the scan.
				return
			}
		}
		if chunk.Done {
			stream.Emit(domain.Token{Done: true})
			stream.Finish()
			return
		}
	}

	if err := scanner.Err(); err != nil {
		if timedOut.Load() {
			stream.Fail(fmt.Errorf("%w: no token within %s", domain.ErrGenerationTimeout, s.streamTimeout))
			return
		}
		stream.Fail(fmt.Errorf("read stream: %w", err))
		return
	}

	// Stream ended without a done marker: treat as complete.
	stream.Finish()
}

// postGenerate sends a /api/generate request and validates the status.
func (s *LLMService) postGenerate(
	ctx context.Context,
	client *http.Client,
	prompt string,
	opts driven.GenerateOptions,
	streaming bool,
) (*http.Response, error) {
	reqBody := generateRequest{
		Model:  s.model,
		Prompt: prompt,
		Stream: streaming,
	}
	if opts.MaxTokens > 0 || opts.Temperature > 0 || len(opts.StopWords) > 0 {
		reqBody.Options = &options{
			NumPredict:  opts.MaxTokens,
			Temperature: opts.Temperature,
			Stop:        opts.StopWords,
		}
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.baseURL+"/api/generate",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrGenerationUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: status %d, unreadable body", domain.ErrGenerationUnavailable, resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: status %d: %s", domain.ErrGenerationUnavailable, resp.StatusCode, string(body))
	}
	return resp, nil
}

// defaultQueryRewritePrompt is the fallback prompt when no PromptStore is configured.
const defaultQueryRewritePrompt = `Given the conversation below, rewrite the final question as a single
standalone question that needs no conversation context to understand.
Return ONLY the rewritten question, nothing else.

Conversation:
%s

Final question: %s
Standalone question:`

// RewriteQuery condenses a question plus conversation history into a
// standalone query suitable for retrieval.
func (s *LLMService) RewriteQuery(ctx context.Context, query string, history []domain.ChatMessage) (string, error) {
	if len(history) == 0 {
		return query, nil
	}

	var sb strings.Builder
	for _, msg := range history {
		switch msg.Role {
		case domain.RoleUser:
			sb.WriteString("User: ")
		case domain.RoleAssistant:
			sb.WriteString("Assistant: ")
		default:
			continue
		}
		sb.WriteString(msg.Content)
		sb.WriteString("\n")
	}

	promptTemplate := s.loadPrompt(driven.PromptQueryRewrite, defaultQueryRewritePrompt)
	prompt := fmt.Sprintf(promptTemplate, sb.String(), query)

	result, err := s.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   100,
		Temperature: 0.3,
	})
	if err != nil {
		return "", fmt.Errorf("rewrite query: %w", err)
	}

	return strings.TrimSpace(result), nil
}

// loadPrompt loads a prompt from the store, falling back to the default if unavailable.
func (s *LLMService) loadPrompt(name, fallback string) string {
	if s.promptStore == nil {
		return fallback
	}
	prompt, err := s.promptStore.Load(name)
	if err != nil || prompt == "" {
		return fallback
	}
	return prompt
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// SetPromptStore sets the prompt store for loading customisable prompts.
// If not set, the service uses hardcoded default prompts.
func (s *LLMService) SetPromptStore(store driven.PromptStore) {
	s.promptStore = store
}

// Ping validates the service is reachable by checking the /api/tags endpoint.
// This is a lightweight check that validates connectivity without running inference.
func (s *LLMService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/api/tags", http.NoBody)
	if err != nil {
		return fmt.Errorf("ollama: failed to create ping request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: ping failed: %w", domain.ErrGenerationUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("ollama: API returned status %d (failed to read body: %w)", resp.StatusCode, err)
		}
		return fmt.Errorf("ollama: API returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	// HTTP clients don't need explicit cleanup
	return nil
}
