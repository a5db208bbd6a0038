package services

import (
	"context"
	"path/filepath"
	"time"

	"github.com/custodia-labs/docask/internal/core/domain"
	"github.com/custodia-labs/docask/internal/core/ports/driven"
	"github.com/custodia-labs/docask/internal/core/ports/driving"
)

// Ensure LibraryService implements the interface.
var _ driving.LibraryService = (*LibraryService)(nil)

// LibraryService reports on ingested content.
type LibraryService struct {
	store   driven.ChunkStore
	history driven.ScanHistory
}

// NewLibraryService creates a library service. history may be nil.
func NewLibraryService(store driven.ChunkStore, history driven.ScanHistory) *LibraryService {
	return &LibraryService{store: store, history: history}
}

// Statistics returns file and chunk counts.
func (s *LibraryService) Statistics(ctx context.Context) (domain.Statistics, error) {
	return s.store.Statistics(ctx)
}

// RecentFiles returns names of files first ingested within since.
// A non-positive window uses the default of seven days.
func (s *LibraryService) RecentFiles(ctx context.Context, since time.Duration) ([]string, error) {
	if since <= 0 {
		since = domain.DefaultRecentWindow
	}
	return s.store.RecentFiles(ctx, since)
}

// ListFiles returns all tracked files.
func (s *LibraryService) ListFiles(ctx context.Context) ([]domain.TrackedFile, error) {
	return s.store.ListFiles(ctx)
}

// LastScan returns the most recent scan of root, or nil.
func (s *LibraryService) LastScan(ctx context.Context, root string) (*domain.ScanRecord, error) {
	if s.history == nil {
		return nil, nil
	}
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	return s.history.LastScan(ctx, root)
}
