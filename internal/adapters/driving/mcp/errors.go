// Package mcp provides an MCP (Model Context Protocol) server adapter for docask.
// It lets AI assistants search, question and summarise the ingested documents.
package mcp

import "errors"

var (
	// ErrMissingSearchService is returned when the search service is not provided.
	ErrMissingSearchService = errors.New("mcp: search service is required")

	// ErrMissingAssistant is returned when the assistant is not provided.
	ErrMissingAssistant = errors.New("mcp: assistant is required")
)
