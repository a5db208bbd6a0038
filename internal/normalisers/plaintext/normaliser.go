// Package plaintext extracts text from plain text and Markdown files.
package plaintext

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/custodia-labs/docask/internal/core/domain"
	"github.com/custodia-labs/docask/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

const utf8BOM = "\ufeff"

// Extractor handles plain text documents.
type Extractor struct{}

// New creates a new plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extensions returns the file extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".txt", ".md", ".markdown"}
}

// Paginated reports that text files have no native pages.
func (e *Extractor) Paginated() bool {
	return false
}

// Extract returns the whole file as page 1.
// Invalid UTF-8 sequences are replaced with U+FFFD.
func (e *Extractor) Extract(_ context.Context, path string) ([]domain.Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", domain.ErrExtraction, path, err)
	}

	text := strings.ToValidUTF8(string(data), "\uFFFD")
	text = strings.TrimPrefix(text, utf8BOM)

	return []domain.Page{{Number: 1, Text: text}}, nil
}
