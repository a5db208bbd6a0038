package services

import (
	"context"
	"crypto/md5" //nolint:gosec // content fingerprint, not security
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/docask/internal/core/domain"
	"github.com/custodia-labs/docask/internal/core/ports/driven"
	"github.com/custodia-labs/docask/internal/core/ports/driving"
	"github.com/custodia-labs/docask/internal/logger"
	"github.com/custodia-labs/docask/internal/metrics"
	"github.com/custodia-labs/docask/internal/postprocessors/chunker"
)

// Ensure IngestService implements the interface.
var _ driving.Ingestor = (*IngestService)(nil)

// IngestService walks directories and keeps the chunk store in step with
// the documents on disk.
type IngestService struct {
	store      driven.ChunkStore
	extractors driven.ExtractorRegistry
	settings   domain.IngestSettings

	embedder driven.EmbeddingService
	metrics  *metrics.Metrics
}

// NewIngestService creates an ingest service.
func NewIngestService(
	store driven.ChunkStore,
	extractors driven.ExtractorRegistry,
	settings domain.IngestSettings,
) *IngestService {
	return &IngestService{
		store:      store,
		extractors: extractors,
		settings:   settings,
	}
}

// SetEmbeddingService enables chunk embeddings. Nil disables them.
func (s *IngestService) SetEmbeddingService(e driven.EmbeddingService) {
	s.embedder = e
}

// SetMetrics sets the metrics sink.
func (s *IngestService) SetMetrics(m *metrics.Metrics) {
	s.metrics = m
}

// ProcessDirectory ingests every supported file below root.
// A missing root fails with domain.ErrDirectoryNotFound. Failures of single
// files are logged and counted; only storage failures abort the walk.
func (s *IngestService) ProcessDirectory(
	ctx context.Context, root string, chunkSize int,
) (domain.IngestReport, error) {
	report := domain.IngestReport{Root: root, StartedAt: time.Now()}
	defer s.metrics.ScanStarted()()

	abs, err := filepath.Abs(root)
	if err != nil {
		return report, fmt.Errorf("%w: %s: %w", domain.ErrDirectoryNotFound, root, err)
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return report, fmt.Errorf("%w: %s", domain.ErrDirectoryNotFound, root)
	}
	report.Root = abs

	if chunkSize <= 0 {
		chunkSize = s.settings.ChunkSize
	}
	chunk := chunker.New(chunker.WithChunkSize(chunkSize))

	logger.Section("Ingest")
	logger.Info("Scanning %s (chunk size %d)", abs, chunk.ChunkSize())

	paths, err := s.collect(abs)
	if err != nil {
		return report, err
	}
	logger.Debug("Found %d candidate files", len(paths))

	var mu sync.Mutex
	record := func(path string, outcome domain.FileOutcome, chunks int) {
		mu.Lock()
		report.Record(outcome, chunks)
		mu.Unlock()
		s.metrics.RecordFile(string(outcome), chunks)
		logger.Debug("%s: %s (%d chunks)", path, outcome, chunks)
	}

	workers := s.settings.Workers
	if workers <= 0 {
		workers = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, path := range paths {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			outcome, chunks, err := s.processFile(gctx, path, chunk)
			if err != nil {
				return err
			}
			record(path, outcome, chunks)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		report.Duration = time.Since(report.StartedAt)
		return report, err
	}
	if err := ctx.Err(); err != nil {
		report.Duration = time.Since(report.StartedAt)
		return report, err
	}

	if s.settings.Prune {
		pruned, err := s.prune(ctx, abs)
		report.FilesPruned = pruned
		if err != nil {
			report.Duration = time.Since(report.StartedAt)
			return report, err
		}
	}

	if stats, err := s.store.Statistics(ctx); err == nil {
		s.metrics.SetStoreSize(stats.Files, stats.Chunks)
	}

	report.Duration = time.Since(report.StartedAt)
	logger.Info("Scanned %s: %d new, %d changed, %d unchanged, %d empty, %d failed, %d chunks in %s",
		abs, report.FilesNew, report.FilesChanged, report.FilesUnchanged,
		report.FilesEmpty, report.FilesFailed, report.ChunksWritten, report.Duration.Round(time.Millisecond))
	return report, nil
}

// collect returns the supported files below root in walk order.
// Hidden entries and office lock files are skipped.
func (s *IngestService) collect(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			logger.Warn("Skipping %s: %v", path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		name := d.Name()
		if path != root && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$")) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		if s.supports(filepath.Ext(name)) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrDirectoryNotFound, root, err)
	}
	return paths, nil
}

func (s *IngestService) supports(ext string) bool {
	ext = strings.ToLower(ext)
	if ext == "" {
		return false
	}
	if len(s.settings.Extensions) > 0 && !s.settings.AcceptsExtension(ext) {
		return false
	}
	_, err := s.extractors.Get(ext)
	return err == nil
}

// processFile ingests a single file. The returned error is non-nil only
// for failures that must abort the walk.
func (s *IngestService) processFile(
	ctx context.Context, path string, chunk *chunker.Processor,
) (domain.FileOutcome, int, error) {
	info, err := os.Stat(path)
	if err != nil {
		logger.Warn("Cannot stat %s: %v", path, err)
		return domain.FileFailed, 0, nil
	}
	hash, err := hashFile(path)
	if err != nil {
		logger.Warn("Cannot hash %s: %v", path, err)
		return domain.FileFailed, 0, nil
	}

	outcome := domain.FileNew
	existing, err := s.store.GetFile(ctx, path)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		// new file
	case err != nil:
		return "", 0, err
	case existing.Hash == hash:
		// Same content: a newer mtime alone never triggers reprocessing.
		return domain.FileUnchanged, 0, nil
	default:
		outcome = domain.FileChanged
	}

	extractor, err := s.extractors.Get(strings.ToLower(filepath.Ext(path)))
	if err != nil {
		logger.Warn("No extractor for %s: %v", path, err)
		return domain.FileFailed, 0, nil
	}
	pages, err := extractor.Extract(ctx, path)
	if err != nil {
		if ctx.Err() != nil {
			return "", 0, ctx.Err()
		}
		logger.Error(err, "Extraction failed for %s", path)
		return domain.FileFailed, 0, nil
	}
	if !extractor.Paginated() {
		pages = flatten(pages)
	}

	chunks := chunk.Chunk(pages)
	if len(chunks) == 0 {
		logger.Warn("No text extracted from %s, skipping", path)
		return domain.FileEmpty, 0, nil
	}

	s.embed(ctx, path, chunks)

	file := domain.TrackedFile{
		Path:       path,
		Name:       filepath.Base(path),
		Hash:       hash,
		Size:       info.Size(),
		ModifiedAt: info.ModTime(),
	}
	res, err := s.store.Upsert(ctx, file, chunks)
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		logger.Warn("Rejected %s: %v", path, err)
		return domain.FileFailed, 0, nil
	case err != nil:
		return "", 0, err
	case res.Skipped:
		return domain.FileUnchanged, 0, nil
	}
	return outcome, res.ChunksWritten, nil
}

// embed attaches embeddings to chunks when an embedding service is set.
// Failure leaves the chunks without embeddings.
func (s *IngestService) embed(ctx context.Context, path string, chunks []domain.ChunkInput) {
	if s.embedder == nil {
		return
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err == nil && len(vectors) != len(chunks) {
		err = fmt.Errorf("%w: got %d embeddings for %d chunks", domain.ErrOracle, len(vectors), len(chunks))
	}
	if err != nil {
		s.metrics.RecordOracleError("embedding")
		logger.Warn("Storing %s without embeddings: %v", path, err)
		return
	}
	for i := range chunks {
		chunks[i].Embedding = vectors[i]
	}
}

// prune deletes tracked files below root that no longer exist on disk.
func (s *IngestService) prune(ctx context.Context, root string) (int, error) {
	files, err := s.store.ListFiles(ctx)
	if err != nil {
		return 0, err
	}

	prefix := root + string(filepath.Separator)
	pruned := 0
	for _, f := range files {
		if !strings.HasPrefix(f.Path, prefix) {
			continue
		}
		if _, err := os.Stat(f.Path); !errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := s.store.DeleteFile(ctx, f.Path); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return pruned, err
		}
		logger.Info("Pruned %s", f.Path)
		pruned++
	}
	return pruned, nil
}

// flatten merges the pages of a non-paginated document into page 1.
func flatten(pages []domain.Page) []domain.Page {
	if len(pages) <= 1 {
		if len(pages) == 1 {
			pages[0].Number = 1
		}
		return pages
	}
	texts := make([]string, 0, len(pages))
	for _, p := range pages {
		texts = append(texts, p.Text)
	}
	return []domain.Page{{Number: 1, Text: strings.Join(texts, "\n")}}
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := md5.New() //nolint:gosec // content fingerprint, not security
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
