package plaintext

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docask/internal/core/domain"
	"github.com/custodia-labs/docask/internal/core/ports/driven"
)

func writeFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o600))
	return path
}

func TestExtensions(t *testing.T) {
	e := New()
	assert.ElementsMatch(t, []string{".txt", ".md", ".markdown"}, e.Extensions())
	assert.False(t, e.Paginated())
}

func TestExtract_Success(t *testing.T) {
	path := writeFile(t, "notes.txt", []byte("Hello, World!\nSecond line."))

	pages, err := New().Extract(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, domain.Page{Number: 1, Text: "Hello, World!\nSecond line."}, pages[0])
}

func TestExtract_StripsBOM(t *testing.T) {
	path := writeFile(t, "bom.md", append([]byte{0xEF, 0xBB, 0xBF}, []byte("# Title")...))

	pages, err := New().Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "# Title", pages[0].Text)
}

func TestExtract_InvalidUTF8(t *testing.T) {
	path := writeFile(t, "bad.txt", []byte{'o', 'k', 0xff, '!'})

	pages, err := New().Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "ok\uFFFD!", pages[0].Text)
}

func TestExtract_UnicodeContent(t *testing.T) {
	content := "日本語テキスト 🎉 émojis"
	path := writeFile(t, "unicode.txt", []byte(content))

	pages, err := New().Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, content, pages[0].Text)
}

func TestExtract_MissingFile(t *testing.T) {
	_, err := New().Extract(context.Background(), filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorIs(t, err, domain.ErrExtraction)
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Extractor = (*Extractor)(nil)
}
