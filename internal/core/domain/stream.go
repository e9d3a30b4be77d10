package domain

import (
	"context"
	"strings"
	"sync"
)

// Token is a single increment of generated text.
type Token struct {
	// Content is the text fragment, possibly empty on the final token.
	Content string

	// Done is true on the last token of a completed generation.
	Done bool
}

// AnswerStream is a lazy, finite, non-restartable sequence of tokens
// produced for one prompt. Tokens arrive in generation order and the
// consumer pulls them, so backpressure is implicit. Ownership transfers
// to the caller: the stream must be drained or closed, and closing it
// promptly cancels the underlying request.
type AnswerStream struct {
	tokens chan Token
	done   chan struct{}
	cancel func()

	closeOnce sync.Once

	mu  sync.Mutex
	err error
}

// NewAnswerStream creates a stream whose producer cancels via the given
// function when the consumer closes early. cancel may be nil.
func NewAnswerStream(cancel func()) *AnswerStream {
	if cancel == nil {
		cancel = func() {}
	}
	return &AnswerStream{
		tokens: make(chan Token),
		done:   make(chan struct{}),
		cancel: cancel,
	}
}

// Emit delivers a token to the consumer, blocking until it is pulled.
// It returns false when the consumer has closed the stream; producers
// must stop emitting once that happens.
func (s *AnswerStream) Emit(tok Token) bool {
	select {
	case s.tokens <- tok:
		return true
	case <-s.done:
		return false
	}
}

// Finish ends the stream after a complete generation.
func (s *AnswerStream) Finish() {
	close(s.tokens)
}

// Fail ends the stream with an error, signalling partial completion.
func (s *AnswerStream) Fail(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
	close(s.tokens)
}

// Next returns the next token. ok is false when the stream has ended,
// either normally, with an error (see Err), or because ctx was
// cancelled.
func (s *AnswerStream) Next(ctx context.Context) (tok Token, ok bool) {
	select {
	case tok, ok = <-s.tokens:
		return tok, ok
	case <-ctx.Done():
		s.mu.Lock()
		if s.err == nil {
			s.err = ctx.Err()
		}
		s.mu.Unlock()
		return Token{}, false
	}
}

// Err reports why the stream ended early. It is nil after a complete
// generation and before the stream has ended.
func (s *AnswerStream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close abandons the stream and releases the underlying connection.
// Safe to call multiple times and after the stream has ended.
func (s *AnswerStream) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
		s.cancel()
	})
	return nil
}

// Text drains the stream and returns the concatenated token contents.
// For a deterministic model configuration this equals the blocking
// generation response for the same prompt.
func (s *AnswerStream) Text(ctx context.Context) (string, error) {
	defer s.Close()

	var sb strings.Builder
	for {
		tok, ok := s.Next(ctx)
		if !ok {
			return sb.String(), s.Err()
		}
		sb.WriteString(tok.Content)
	}
}
