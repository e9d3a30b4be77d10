package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/caderno-labs/caderno-cli/internal/core/domain"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the indexed documents"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer string `json:"answer"`
}

// RetrieveInput is the input schema for the retrieve tool.
type RetrieveInput struct {
	Query string `json:"query" jsonschema:"the query to find relevant document chunks for"`
}

// RetrieveOutput is the output schema for the retrieve tool.
type RetrieveOutput struct {
	Chunks []RetrievedChunkOutput `json:"chunks"`
	Count  int                    `json:"count"`
}

// RetrievedChunkOutput represents a single retrieved chunk.
type RetrievedChunkOutput struct {
	DocumentID    string  `json:"document_id"`
	DocumentTitle string  `json:"document_title"`
	Page          int     `json:"page,omitempty"`
	Score         float64 `json:"score"`
	Content       string  `json:"content"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question grounded in the indexed study material",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "retrieve",
		Description: "Find the document chunks most relevant to a query",
	}, s.handleRetrieve)
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	answer, err := s.ports.Answer.Answer(ctx, domain.Query{Text: input.Question})
	if err != nil {
		return nil, AskOutput{}, err
	}

	return nil, AskOutput{Answer: answer}, nil
}

// handleRetrieve handles the retrieve tool invocation.
func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	result, err := s.ports.Answer.Retrieve(ctx, domain.Query{Text: input.Query})
	if err != nil {
		return nil, RetrieveOutput{}, err
	}

	output := RetrieveOutput{
		Chunks: make([]RetrievedChunkOutput, len(result.Chunks)),
		Count:  len(result.Chunks),
	}

	for i := range result.Chunks {
		output.Chunks[i] = RetrievedChunkOutput{
			DocumentID:    result.Chunks[i].Chunk.DocumentID,
			DocumentTitle: result.Chunks[i].DocumentTitle,
			Page:          result.Chunks[i].Chunk.Page,
			Score:         result.Chunks[i].Score,
			Content:       result.Chunks[i].Chunk.Content,
		}
	}

	return nil, output, nil
}
