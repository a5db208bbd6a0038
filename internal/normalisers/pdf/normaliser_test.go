package pdf

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docask/internal/core/domain"
	"github.com/custodia-labs/docask/internal/core/ports/driven"
)

// mockRunner is a test double for CommandRunner.
type mockRunner struct {
	output []byte
	err    error
	name   string
	args   []string
}

func (m *mockRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	m.name = name
	m.args = args
	return m.output, m.err
}

func TestNew(t *testing.T) {
	extractor := New()
	require.NotNil(t, extractor)
	assert.NotNil(t, extractor.check)
}

func TestExtensions(t *testing.T) {
	assert.Equal(t, []string{".pdf"}, New().Extensions())
	assert.True(t, New().Paginated())
}

func TestNewWithRunner(t *testing.T) {
	runner := &mockRunner{output: []byte("test output")}
	extractor := NewWithRunner(runner)
	require.NotNil(t, extractor)
	assert.Equal(t, runner, extractor.runner)
	assert.Nil(t, extractor.check)
}

func TestExtract_SplitsOnFormFeed(t *testing.T) {
	runner := &mockRunner{output: []byte("Page one text\fPage two text\f\fPage four\f")}
	extractor := NewWithRunner(runner)

	pages, err := extractor.Extract(context.Background(), "/docs/report.pdf")
	require.NoError(t, err)

	require.Len(t, pages, 4)
	assert.Equal(t, domain.Page{Number: 1, Text: "Page one text"}, pages[0])
	assert.Equal(t, domain.Page{Number: 2, Text: "Page two text"}, pages[1])
	assert.Equal(t, 3, pages[2].Number)
	assert.Empty(t, pages[2].Text)
	assert.Equal(t, domain.Page{Number: 4, Text: "Page four"}, pages[3])

	assert.Equal(t, "pdftotext", runner.name)
	assert.Equal(t, []string{"-enc", "UTF-8", "/docs/report.pdf", "-"}, runner.args)
}

func TestExtract_NoFormFeed(t *testing.T) {
	runner := &mockRunner{output: []byte("single page")}
	pages, err := NewWithRunner(runner).Extract(context.Background(), "/a.pdf")
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, "single page", pages[0].Text)
}

func TestExtract_EmptyOutput(t *testing.T) {
	runner := &mockRunner{output: []byte("")}
	pages, err := NewWithRunner(runner).Extract(context.Background(), "/a.pdf")
	require.NoError(t, err)
	assert.Empty(t, pages)
}

// TestExtract_RunnerError tests error handling when pdftotext fails.
func TestExtract_RunnerError(t *testing.T) {
	runner := &mockRunner{err: errors.New("pdftotext crashed")}
	pages, err := NewWithRunner(runner).Extract(context.Background(), "/a.pdf")

	assert.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExtraction)
	assert.Contains(t, err.Error(), "pdftotext failed")
	assert.Nil(t, pages)
}

func TestExtract_ToolMissing(t *testing.T) {
	extractor := &Extractor{
		runner: &mockRunner{},
		check:  func() error { return ErrPDFToolNotFound },
	}
	_, err := extractor.Extract(context.Background(), "/a.pdf")

	assert.ErrorIs(t, err, domain.ErrExtraction)
	assert.ErrorIs(t, err, ErrPDFToolNotFound)
}

func TestInstallInstructions(t *testing.T) {
	instructions := InstallInstructions()
	assert.Contains(t, instructions, "pdftotext")
	assert.Contains(t, instructions, "brew install poppler")
	assert.Contains(t, instructions, "apt install poppler-utils")
}

func TestErrPDFToolNotFound(t *testing.T) {
	assert.Contains(t, ErrPDFToolNotFound.Error(), "pdftotext")
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Extractor = (*Extractor)(nil)
}
