// Package tui provides the interactive terminal chat for docask.
// It is a driving adapter over the assistant and library ports.
package tui

import (
	"github.com/custodia-labs/docask/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the chat.
type Ports struct {
	// Assistant answers questions and summarises files.
	Assistant driving.Assistant

	// Library feeds the status bar. Optional.
	Library driving.LibraryService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Assistant == nil {
		return ErrMissingAssistant
	}
	return nil
}
