// Package pdf extracts page text from PDF files using pdftotext.
package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/custodia-labs/docask/internal/core/domain"
	"github.com/custodia-labs/docask/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// ErrPDFToolNotFound indicates pdftotext is not installed.
var ErrPDFToolNotFound = errors.New("pdftotext not found in PATH")

const toolName = "pdftotext"

// pageBreak separates pages in pdftotext output.
const pageBreak = "\f"

// CommandRunner runs an external command and returns its stdout.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}
	return out, nil
}

// Extractor handles PDF documents. Each PDF page becomes one Page.
type Extractor struct {
	runner CommandRunner
	check  func() error
}

// New creates a PDF extractor that shells out to pdftotext.
func New() *Extractor {
	return &Extractor{
		runner: execRunner{},
		check:  CheckAvailable,
	}
}

// NewWithRunner creates a PDF extractor with a custom command runner.
// The availability check is skipped.
func NewWithRunner(runner CommandRunner) *Extractor {
	return &Extractor{runner: runner}
}

// Extensions returns the file extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".pdf"}
}

// Paginated reports that PDFs have native pages.
func (e *Extractor) Paginated() bool {
	return true
}

// Extract returns one page per PDF page, numbered from 1.
func (e *Extractor) Extract(ctx context.Context, path string) ([]domain.Page, error) {
	if e.check != nil {
		if err := e.check(); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrExtraction, err)
		}
	}

	out, err := e.runner.Run(ctx, toolName, "-enc", "UTF-8", path, "-")
	if err != nil {
		return nil, fmt.Errorf("%w: pdftotext failed for %s: %v", domain.ErrExtraction, path, err)
	}

	return splitPages(string(out)), nil
}

// splitPages splits pdftotext output on form feeds.
// pdftotext terminates every page with a form feed, so a trailing empty
// segment is dropped. Blank pages in the middle keep their ordinal.
func splitPages(text string) []domain.Page {
	segments := strings.Split(text, pageBreak)
	if n := len(segments); n > 0 && strings.TrimSpace(segments[n-1]) == "" {
		segments = segments[:n-1]
	}

	pages := make([]domain.Page, 0, len(segments))
	for i, seg := range segments {
		pages = append(pages, domain.Page{Number: i + 1, Text: seg})
	}
	return pages
}

// CheckAvailable returns ErrPDFToolNotFound if pdftotext is not installed.
func CheckAvailable() error {
	if _, err := exec.LookPath(toolName); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

// InstallInstructions explains how to install pdftotext.
func InstallInstructions() string {
	return `PDF extraction requires pdftotext (part of poppler).

  macOS:          brew install poppler
  Debian/Ubuntu:  sudo apt install poppler-utils
  Fedora:         sudo dnf install poppler-utils
  Windows:        choco install poppler`
}
