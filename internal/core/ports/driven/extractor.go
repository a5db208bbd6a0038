package driven

import (
	"context"

	"github.com/custodia-labs/docask/internal/core/domain"
)

// Extractor turns a document on disk into pages of text.
// Paginated formats return one Page per native page. Flat formats
// return a single page numbered 1.
type Extractor interface {
	// Extensions returns the lowercase file extensions handled, with leading dot.
	Extensions() []string

	// Paginated reports whether the format has native pages.
	Paginated() bool

	// Extract reads the file at path.
	// Failures are reported wrapped in domain.ErrExtraction.
	Extract(ctx context.Context, path string) ([]domain.Page, error)
}

// ExtractorRegistry selects an extractor by file extension.
type ExtractorRegistry interface {
	// Register adds an extractor for all of its extensions.
	Register(e Extractor)

	// Get returns the extractor for ext, or domain.ErrUnsupportedType.
	Get(ext string) (Extractor, error)

	// Extensions lists registered extensions in sorted order.
	Extensions() []string
}
