package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/docask/internal/core/domain"
)

// ChunkStore persists tracked files and their ordered chunks.
// Implementations wrap persistence failures in domain.ErrStorage.
type ChunkStore interface {
	// Upsert stores file and its chunks.
	// If a file with the same path, hash and modification time is already stored,
	// the call is a no-op and the result is marked Skipped. Otherwise the old file
	// and its chunks are removed and the new ones inserted in one transaction.
	Upsert(ctx context.Context, file domain.TrackedFile, chunks []domain.ChunkInput) (domain.UpsertResult, error)

	// GetFile returns the stored file for an absolute path.
	// Returns domain.ErrNotFound if the path is not tracked.
	GetFile(ctx context.Context, path string) (*domain.TrackedFile, error)

	// ListFiles returns every tracked file ordered by path.
	ListFiles(ctx context.Context) ([]domain.TrackedFile, error)

	// DeleteFile removes a file and, by cascade, its chunks.
	DeleteFile(ctx context.Context, path string) error

	// AllChunks returns every chunk with its file name, ordered by file path then index.
	AllChunks(ctx context.Context) ([]domain.Chunk, error)

	// ChunksForFile returns the chunks of the file with the given display name,
	// ordered by page then index.
	ChunksForFile(ctx context.Context, fileName string) ([]domain.Chunk, error)

	// Statistics returns file and chunk counts.
	Statistics(ctx context.Context) (domain.Statistics, error)

	// RecentFiles returns names of files first ingested within the window, newest first.
	RecentFiles(ctx context.Context, since time.Duration) ([]string, error)
}

// ScanHistory records directory scans for operator visibility.
type ScanHistory interface {
	// RecordScan persists a scan record.
	RecordScan(ctx context.Context, record domain.ScanRecord) error

	// LastScan returns the most recent scan of root.
	// Returns nil and no error if root has never been scanned.
	LastScan(ctx context.Context, root string) (*domain.ScanRecord, error)

	// PruneScans keeps the newest keep records per root and deletes the rest.
	PruneScans(ctx context.Context, keep int) error
}
