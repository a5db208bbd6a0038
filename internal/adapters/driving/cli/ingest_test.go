package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docask/internal/core/domain"
)

func TestIngestCmd_ProcessesArgs(t *testing.T) {
	ing := &mockIngestor{report: domain.IngestReport{FilesSeen: 3, FilesNew: 2, FilesUnchanged: 1, ChunksWritten: 7}}
	rt := testRuntime()
	rt.Ingestor = ing

	out, err := runCommand(t, rt, "ingest", "--chunk-size", "500", "/docs/a", "/docs/b")

	require.NoError(t, err)
	assert.Equal(t, []string{"/docs/a", "/docs/b"}, ing.roots)
	assert.Equal(t, []int{500, 500}, ing.sizes)
	assert.Contains(t, out, "/docs/a")
	assert.Contains(t, out, "chunks written: 7")
	assert.NotContains(t, out, "failed:")
}

func TestIngestCmd_UsesConfiguredDirectories(t *testing.T) {
	ing := &mockIngestor{}
	rt := testRuntime()
	rt.Settings.Ingest.Directories = []string{"/configured"}
	rt.Ingestor = ing

	_, err := runCommand(t, rt, "ingest")

	require.NoError(t, err)
	assert.Equal(t, []string{"/configured"}, ing.roots)
	assert.Equal(t, []int{0}, ing.sizes)
}

func TestIngestCmd_NoDirectories(t *testing.T) {
	rt := testRuntime()
	rt.Ingestor = &mockIngestor{}

	_, err := runCommand(t, rt, "ingest")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIngestCmd_FlagsReachBootstrap(t *testing.T) {
	rt := testRuntime()
	rt.Ingestor = &mockIngestor{}

	out, opts, err := runCommandOpts(t, rt, "ingest", "--prune", "--dry-run", "/docs")

	require.NoError(t, err)
	assert.True(t, opts.Prune)
	assert.True(t, opts.DryRun)
	assert.False(t, opts.SettingsOnly)
	assert.Contains(t, out, "Dry run")
}

func TestIngestCmd_ReportsFailures(t *testing.T) {
	rt := testRuntime()
	rt.Ingestor = &mockIngestor{report: domain.IngestReport{FilesSeen: 2, FilesFailed: 1, FilesPruned: 4}}

	out, err := runCommand(t, rt, "ingest", "/docs")

	require.NoError(t, err)
	assert.Contains(t, out, "failed:         1")
	assert.Contains(t, out, "pruned:         4")
}

func TestIngestCmd_Error(t *testing.T) {
	rt := testRuntime()
	rt.Ingestor = &mockIngestor{err: domain.ErrDirectoryNotFound}

	_, err := runCommand(t, rt, "ingest", "/missing")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDirectoryNotFound))
	assert.Contains(t, err.Error(), "/missing")
}

func TestIngestCmd_ServiceNotConfigured(t *testing.T) {
	_, err := runCommand(t, testRuntime(), "ingest", "/docs")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}
