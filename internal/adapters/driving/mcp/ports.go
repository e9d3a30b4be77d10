package mcp

import (
	"github.com/caderno-labs/caderno-cli/internal/core/ports/driven"
	"github.com/caderno-labs/caderno-cli/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the MCP
// server. This provides a single injection point.
type Ports struct {
	// Answer provides question answering and retrieval.
	Answer driving.AnswerService

	// Source manages source configurations.
	Source driving.SourceService

	// Documents reads indexed documents for resources.
	Documents driven.DocumentStore
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Answer == nil {
		return ErrMissingAnswerService
	}
	// Source and Documents are optional; resources degrade gracefully
	return nil
}
