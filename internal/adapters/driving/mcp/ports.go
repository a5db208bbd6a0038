package mcp

import (
	"github.com/custodia-labs/docask/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the MCP server.
type Ports struct {
	// Search ranks chunks for the search tool.
	Search driving.SearchService

	// Assistant answers the ask and summarize tools.
	Assistant driving.Assistant

	// Library backs the file and statistics resources. Optional.
	Library driving.LibraryService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	if p.Assistant == nil {
		return ErrMissingAssistant
	}
	return nil
}
