package normalisers

import (
	"github.com/custodia-labs/docask/internal/normalisers/docx"
	"github.com/custodia-labs/docask/internal/normalisers/pdf"
	"github.com/custodia-labs/docask/internal/normalisers/plaintext"
)

// RegisterDefaults registers all built-in extractors with the registry.
// Call this during application initialisation.
func RegisterDefaults(r *Registry) {
	r.Register(pdf.New())
	r.Register(docx.New())
	r.Register(plaintext.New())
}

// DefaultRegistry returns a registry with all built-in extractors.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterDefaults(r)
	return r
}
