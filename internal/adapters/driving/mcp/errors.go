// Package mcp provides an MCP (Model Context Protocol) server adapter
// for Caderno. It lets AI assistants ask questions grounded in the
// locally indexed study material.
package mcp

import "errors"

// ErrMissingAnswerService is returned when the answer service is not provided.
var ErrMissingAnswerService = errors.New("mcp: answer service is required")
