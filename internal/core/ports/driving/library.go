package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/docask/internal/core/domain"
)

// LibraryService exposes what has been ingested.
type LibraryService interface {
	// Statistics returns file and chunk counts.
	Statistics(ctx context.Context) (domain.Statistics, error)

	// RecentFiles returns names of files first ingested within the window.
	RecentFiles(ctx context.Context, since time.Duration) ([]string, error)

	// ListFiles returns all tracked files.
	ListFiles(ctx context.Context) ([]domain.TrackedFile, error)

	// LastScan returns the most recent scan of root, or nil.
	LastScan(ctx context.Context, root string) (*domain.ScanRecord, error)
}
