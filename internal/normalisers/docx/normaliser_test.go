package docx

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docask/internal/core/domain"
	"github.com/custodia-labs/docask/internal/core/ports/driven"
)

const docHeader = `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>`

const docFooter = `</w:body>
</w:document>`

// writeTestDOCX creates a minimal DOCX file on disk and returns its path.
func writeTestDOCX(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.docx")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	contentTypes, err := w.Create("[Content_Types].xml")
	require.NoError(t, err)
	_, err = contentTypes.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`))
	require.NoError(t, err)

	if body != "" {
		doc, err := w.Create(documentPart)
		require.NoError(t, err)
		_, err = doc.Write([]byte(docHeader + body + docFooter))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	return path
}

func TestExtensions(t *testing.T) {
	e := New()
	assert.Equal(t, []string{".docx"}, e.Extensions())
	assert.False(t, e.Paginated())
}

func TestExtract_Success(t *testing.T) {
	path := writeTestDOCX(t, `<w:p><w:r><w:t>Hello World</w:t></w:r></w:p>`)

	pages, err := New().Extract(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, 1, pages[0].Number)
	assert.Equal(t, "Hello World", pages[0].Text)
}

func TestExtract_MultipleParagraphsAndRuns(t *testing.T) {
	path := writeTestDOCX(t, `
<w:p><w:r><w:t>First </w:t></w:r><w:r><w:t>paragraph</w:t></w:r></w:p>
<w:p><w:r><w:t>Second</w:t><w:tab/><w:t>tabbed</w:t></w:r></w:p>
<w:p><w:r><w:t>Line</w:t><w:br/><w:t>break</w:t></w:r></w:p>`)

	pages, err := New().Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "First paragraph\nSecond\ttabbed\nLine\nbreak", pages[0].Text)
}

func TestExtract_TableParagraphs(t *testing.T) {
	path := writeTestDOCX(t, `
<w:tbl><w:tr><w:tc><w:p><w:r><w:t>cell one</w:t></w:r></w:p></w:tc>
<w:tc><w:p><w:r><w:t>cell two</w:t></w:r></w:p></w:tc></w:tr></w:tbl>`)

	pages, err := New().Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "cell one\ncell two", pages[0].Text)
}

func TestExtract_IgnoresNonTextElements(t *testing.T) {
	path := writeTestDOCX(t, `<w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr><w:r><w:instrText>PAGE</w:instrText><w:t>Visible</w:t></w:r></w:p>`)

	pages, err := New().Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "Visible", pages[0].Text)
}

func TestExtract_EmptyDocument(t *testing.T) {
	path := writeTestDOCX(t, `<w:p></w:p>`)

	pages, err := New().Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Empty(t, strings.TrimSpace(pages[0].Text))
}

func TestExtract_MissingDocumentPart(t *testing.T) {
	path := writeTestDOCX(t, "")

	_, err := New().Extract(context.Background(), path)
	assert.ErrorIs(t, err, domain.ErrExtraction)
}

func TestExtract_InvalidZip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.docx")
	require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0o600))

	_, err := New().Extract(context.Background(), path)
	assert.ErrorIs(t, err, domain.ErrExtraction)
}

func TestExtract_MissingFile(t *testing.T) {
	_, err := New().Extract(context.Background(), filepath.Join(t.TempDir(), "nope.docx"))
	assert.ErrorIs(t, err, domain.ErrExtraction)
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Extractor = (*Extractor)(nil)
}
