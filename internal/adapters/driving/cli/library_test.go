package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docask/internal/core/domain"
)

func TestStatsCmd_PrintsCountsRecentAndScans(t *testing.T) {
	ended := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	lib := &mockLibrary{
		stats:  domain.Statistics{Files: 3, Chunks: 42},
		recent: []string{"new.pdf"},
		scans: map[string]*domain.ScanRecord{
			"/docs": {Root: "/docs", EndedAt: ended, FilesProcessed: 2, ChunksWritten: 10, Error: "disk full"},
		},
	}
	rt := testRuntime()
	rt.Settings.Ingest.Directories = []string{"/docs", "/other"}
	rt.Library = lib

	out, err := runCommand(t, rt, "stats", "--since", "48h")

	require.NoError(t, err)
	assert.Equal(t, 48*time.Hour, lib.since)
	assert.Contains(t, out, "Files:  3")
	assert.Contains(t, out, "Chunks: 42")
	assert.Contains(t, out, "new.pdf")
	assert.Contains(t, out, "Last scan of /docs:")
	assert.Contains(t, out, "2 files, 10 chunks")
	assert.Contains(t, out, "disk full")
	assert.NotContains(t, out, "/other")
}

func TestStatsCmd_DefaultWindowIsZero(t *testing.T) {
	lib := &mockLibrary{}
	rt := testRuntime()
	rt.Library = lib

	out, err := runCommand(t, rt, "stats")

	require.NoError(t, err)
	assert.Zero(t, lib.since)
	assert.NotContains(t, out, "Recently added")
}

func TestStatsCmd_Error(t *testing.T) {
	rt := testRuntime()
	rt.Library = &mockLibrary{err: domain.ErrStorage}

	_, err := runCommand(t, rt, "stats")

	assert.ErrorIs(t, err, domain.ErrStorage)
}

func TestFilesCmd_Lists(t *testing.T) {
	rt := testRuntime()
	rt.Library = &mockLibrary{files: []domain.TrackedFile{
		{Path: "/docs/a.pdf", Name: "a.pdf", Size: 2048},
		{Path: "/docs/sub/b.docx", Size: 10},
	}}

	out, err := runCommand(t, rt, "files")

	require.NoError(t, err)
	assert.Contains(t, out, "a.pdf")
	assert.Contains(t, out, "2.0 KiB")
	assert.Contains(t, out, "b.docx")
	assert.Contains(t, out, "/docs/sub")
	assert.Contains(t, out, "2 files")
}

func TestFilesCmd_Empty(t *testing.T) {
	rt := testRuntime()
	rt.Library = &mockLibrary{}

	out, err := runCommand(t, rt, "files")

	require.NoError(t, err)
	assert.Contains(t, out, "No files ingested")
}

func TestHumanSize(t *testing.T) {
	assert.Equal(t, "512 B", humanSize(512))
	assert.Equal(t, "1.5 KiB", humanSize(1536))
	assert.Equal(t, "3.0 MiB", humanSize(3*1024*1024))
}
