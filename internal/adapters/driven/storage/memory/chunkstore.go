// Package memory provides in-memory stores used by tests and by the
// ingest --dry-run.
package memory

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docask/internal/core/domain"
	"github.com/custodia-labs/docask/internal/core/ports/driven"
)

// Ensure ChunkStore implements the interface.
var _ driven.ChunkStore = (*ChunkStore)(nil)

// entry is a tracked file that owns its ordered chunks.
type entry struct {
	file   domain.TrackedFile
	chunks []domain.Chunk
}

// ChunkStore is an in-memory implementation of driven.ChunkStore.
type ChunkStore struct {
	mu    sync.RWMutex
	files map[string]*entry // keyed by path
	now   func() time.Time
}

// NewChunkStore creates a new in-memory chunk store.
func NewChunkStore() *ChunkStore {
	return &ChunkStore{
		files: make(map[string]*entry),
		now:   time.Now,
	}
}

// Upsert stores file and its chunks unless hash and mtime are unchanged.
func (s *ChunkStore) Upsert(
	_ context.Context, file domain.TrackedFile, chunks []domain.ChunkInput,
) (domain.UpsertResult, error) {
	var result domain.UpsertResult

	if file.Path == "" {
		return result, fmt.Errorf("%w: file path is empty", domain.ErrInvalidInput)
	}
	for i, c := range chunks {
		if strings.TrimSpace(c.Text) == "" {
			return result, fmt.Errorf("%w: chunk %d of %s is empty", domain.ErrInvalidInput, i, file.Path)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.files[file.Path]; ok {
		if existing.file.Hash == file.Hash && existing.file.ModifiedAt.Equal(file.ModifiedAt) {
			result.Skipped = true
			return result, nil
		}
		result.Replaced = true
	}

	now := s.now()
	if file.ID == "" {
		file.ID = uuid.NewString()
	}
	if file.Name == "" {
		file.Name = filepath.Base(file.Path)
	}
	if file.CreatedAt.IsZero() {
		file.CreatedAt = now
	}

	e := &entry{file: file, chunks: make([]domain.Chunk, len(chunks))}
	for i, c := range chunks {
		page := c.Page
		if page < 1 {
			page = 1
		}
		e.chunks[i] = domain.Chunk{
			ID:        uuid.NewString(),
			FileID:    file.ID,
			FileName:  file.Name,
			FilePath:  file.Path,
			Index:     i,
			Page:      page,
			Text:      c.Text,
			Embedding: append([]float32(nil), c.Embedding...),
			CreatedAt: now,
		}
	}
	s.files[file.Path] = e

	result.ChunksWritten = len(chunks)
	return result, nil
}

// GetFile retrieves a tracked file by path.
func (s *ChunkStore) GetFile(_ context.Context, path string) (*domain.TrackedFile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.files[path]
	if !ok {
		return nil, domain.ErrNotFound
	}
	f := e.file
	return &f, nil
}

// ListFiles returns every tracked file ordered by path.
func (s *ChunkStore) ListFiles(_ context.Context) ([]domain.TrackedFile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.TrackedFile
	for _, path := range s.sortedPaths() {
		result = append(result, s.files[path].file)
	}
	return result, nil
}

// DeleteFile removes a file and its chunks.
func (s *ChunkStore) DeleteFile(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.files[path]; !ok {
		return domain.ErrNotFound
	}
	delete(s.files, path)
	return nil
}

// AllChunks returns every chunk ordered by file path then index.
func (s *ChunkStore) AllChunks(_ context.Context) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Chunk
	for _, path := range s.sortedPaths() {
		result = append(result, s.files[path].chunks...)
	}
	return result, nil
}

// ChunksForFile returns the chunks of one file ordered by page then index.
// An exact path match wins over a display name match; among files sharing
// a display name the lowest path is used.
func (s *ChunkStore) ChunksForFile(_ context.Context, fileName string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.files[fileName]
	if !ok {
		for _, path := range s.sortedPaths() {
			if s.files[path].file.Name == fileName {
				e = s.files[path]
				break
			}
		}
	}
	if e == nil {
		return nil, nil
	}

	result := append([]domain.Chunk(nil), e.chunks...)
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Page != result[j].Page {
			return result[i].Page < result[j].Page
		}
		return result[i].Index < result[j].Index
	})
	return result, nil
}

// Statistics returns file and chunk counts.
func (s *ChunkStore) Statistics(_ context.Context) (domain.Statistics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := domain.Statistics{Files: len(s.files)}
	for _, e := range s.files {
		stats.Chunks += len(e.chunks)
	}
	return stats, nil
}

// RecentFiles returns names of files created within the window, newest first.
func (s *ChunkStore) RecentFiles(_ context.Context, since time.Duration) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cutoff := s.now().Add(-since)
	var recent []domain.TrackedFile
	for _, e := range s.files {
		if !e.file.CreatedAt.Before(cutoff) {
			recent = append(recent, e.file)
		}
	}
	sort.Slice(recent, func(i, j int) bool {
		if !recent[i].CreatedAt.Equal(recent[j].CreatedAt) {
			return recent[i].CreatedAt.After(recent[j].CreatedAt)
		}
		return recent[i].Name < recent[j].Name
	})

	names := make([]string, len(recent))
	for i, f := range recent {
		names[i] = f.Name
	}
	return names, nil
}

// sortedPaths must be called with the lock held.
func (s *ChunkStore) sortedPaths() []string {
	paths := make([]string, 0, len(s.files))
	for p := range s.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
