// Package httpapi exposes the answer pipeline over HTTP for external
// UI collaborators. Streaming uses server-sent events.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/caderno-labs/caderno-cli/internal/core/domain"
	"github.com/caderno-labs/caderno-cli/internal/core/ports/driving"
	"github.com/caderno-labs/caderno-cli/internal/logger"
)

// Server serves the Caderno HTTP API.
type Server struct {
	answer driving.AnswerService
	ingest driving.IngestOrchestrator
	addr   string
}

// NewServer creates an HTTP API server.
func NewServer(answer driving.AnswerService, ingest driving.IngestOrchestrator, addr string) (*Server, error) {
	if answer == nil {
		return nil, errors.New("httpapi: answer service is required")
	}
	return &Server{
		answer: answer,
		ingest: ingest,
		addr:   addr,
	}, nil
}

// Start runs the server until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:        s.addr,
		Handler:     corsMiddleware(loggingMiddleware(s.Handler())),
		ReadTimeout: 15 * time.Second,
		// Long write timeout; streaming responses are slow by nature.
		WriteTimeout: 300 * time.Second,
	}

	logger.Info("HTTP API listening on %s", s.addr)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	err := server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Handler returns the API routes without the outer middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/ask", s.handleAsk)
	mux.HandleFunc("/api/ask/stream", s.handleAskStream)
	mux.HandleFunc("/api/ingest", s.handleIngest)
	mux.HandleFunc("/api/health", s.handleHealth)
	return mux
}

// askRequest is the /api/ask request body.
type askRequest struct {
	Question string `json:"question"`
}

// askResponse is the /api/ask response body.
type askResponse struct {
	Answer string `json:"answer"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Question == "" {
		http.Error(w, "question required", http.StatusBadRequest)
		return
	}

	answer, err := s.answer.Answer(r.Context(), domain.Query{Text: req.Question})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, askResponse{Answer: answer})
}

// handleAskStream streams an answer as server-sent events. Each event
// carries {"content": "...", "done": false}; the final event has done
// true, and errors arrive as {"error": "...", "done": true}.
func (s *Server) handleAskStream(w http.ResponseWriter, r *http.Request) {
	question := r.URL.Query().Get("q")
	if question == "" {
		http.Error(w, "query parameter q required", http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ctx := r.Context()
	stream, err := s.answer.AnswerStream(ctx, domain.Query{Text: question})
	if err != nil {
		sendSSE(w, flusher, map[string]any{"error": err.Error(), "done": true})
		return
	}
	defer stream.Close()

	for {
		tok, ok := stream.Next(ctx)
		if !ok {
			break
		}
		sendSSE(w, flusher, map[string]any{"content": tok.Content, "done": false})
	}

	if err := stream.Err(); err != nil {
		sendSSE(w, flusher, map[string]any{"error": err.Error(), "done": true})
		return
	}
	sendSSE(w, flusher, map[string]any{"done": true})
}

// ingestRequest is the /api/ingest request body. An empty source ID
// ingests all sources.
type ingestRequest struct {
	SourceID string `json:"source_id"`
}

// ingestResponse summarises one ingested source.
type ingestResponse struct {
	SourceID           string `json:"source_id"`
	DocumentsProcessed int    `json:"documents_processed"`
	DocumentsSkipped   int    `json:"documents_skipped"`
	ChunksIndexed      int    `json:"chunks_indexed"`
	Failures           int    `json:"failures"`
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.ingest == nil {
		http.Error(w, "ingestion not configured", http.StatusServiceUnavailable)
		return
	}

	var req ingestRequest
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req) //nolint:errcheck
	}

	var reports []driving.IngestReport
	if req.SourceID != "" {
		report, err := s.ingest.Ingest(r.Context(), req.SourceID)
		if err != nil {
			writeError(w, err)
			return
		}
		reports = []driving.IngestReport{*report}
	} else {
		var err error
		reports, err = s.ingest.IngestAll(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
	}

	out := make([]ingestResponse, len(reports))
	for i := range reports {
		out[i] = ingestResponse{
			SourceID:           reports[i].SourceID,
			DocumentsProcessed: reports[i].DocumentsProcessed,
			DocumentsSkipped:   reports[i].DocumentsSkipped,
			ChunksIndexed:      reports[i].ChunksIndexed,
			Failures:           len(reports[i].Failures),
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

// writeError maps domain errors to HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNoContext):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrGenerationUnavailable):
		status = http.StatusBadGateway
	case errors.Is(err, domain.ErrIngestInProgress):
		status = http.StatusConflict
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()}) //nolint:errcheck
}

func sendSSE(w http.ResponseWriter, flusher http.Flusher, data map[string]any) {
	payload, err := json.Marshal(data)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", payload)
	flusher.Flush()
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Debug("%s %s %v", r.Method, r.URL.Path, time.Since(start))
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			return
		}
		next.ServeHTTP(w, r)
	})
}
