package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/custodia-labs/docask/internal/core/domain"
	"github.com/custodia-labs/docask/internal/core/ports/driven"
	"github.com/custodia-labs/docask/internal/core/ports/driving"
	"github.com/custodia-labs/docask/internal/logger"
)

// Ensure RescanScheduler implements the interface.
var _ driving.RescanScheduler = (*RescanScheduler)(nil)

// scanHistoryKeep is the number of scan records kept per directory.
const scanHistoryKeep = 100

// RescanScheduler re-ingests the configured directories on an interval.
// At most one scan per directory runs at any time.
type RescanScheduler struct {
	ingestor driving.Ingestor
	history  driven.ScanHistory
	settings domain.IngestSettings

	// tick is how often due directories are checked.
	tick time.Duration
	now  func() time.Time

	mu       sync.Mutex
	running  bool
	stopCh   chan struct{}
	inFlight map[string]bool
	wg       sync.WaitGroup
}

// NewRescanScheduler creates a scheduler. history may be nil, in which
// case every directory is scanned once at start and then every interval.
func NewRescanScheduler(
	ingestor driving.Ingestor,
	history driven.ScanHistory,
	settings domain.IngestSettings,
) *RescanScheduler {
	if settings.ScanInterval <= 0 {
		settings.ScanInterval = domain.DefaultScanInterval
	}
	return &RescanScheduler{
		ingestor: ingestor,
		history:  history,
		settings: settings,
		tick:     time.Minute,
		now:      time.Now,
		inFlight: make(map[string]bool),
	}
}

// Start begins the scheduler loop. This method blocks until Stop is called
// or ctx is cancelled.
func (s *RescanScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.mu.Unlock()

	logger.Info("Rescan scheduler started for %d directories (interval %s)",
		len(s.settings.Directories), s.settings.ScanInterval)

	lastRun := make(map[string]time.Time)
	s.runDue(ctx, lastRun)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			s.mu.Lock()
			if s.stopCh == stopCh {
				s.running = false
				s.stopCh = nil
			}
			s.mu.Unlock()
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-ticker.C:
			s.runDue(ctx, lastRun)
		}
	}
}

// Stop gracefully shuts down the scheduler and waits for running scans.
func (s *RescanScheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// Trigger scans root now and waits for the scan to finish.
func (s *RescanScheduler) Trigger(ctx context.Context, root string) error {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}

	s.mu.Lock()
	if s.inFlight[root] {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", domain.ErrScanInProgress, root)
	}
	s.inFlight[root] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.inFlight, root)
		s.mu.Unlock()
	}()

	return s.scan(ctx, root)
}

// runDue starts a scan for every directory whose interval has elapsed.
func (s *RescanScheduler) runDue(ctx context.Context, lastRun map[string]time.Time) {
	now := s.now()
	for _, dir := range s.settings.Directories {
		if !s.isDue(ctx, dir, lastRun[dir], now) {
			continue
		}
		lastRun[dir] = now

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			err := s.Trigger(ctx, dir)
			switch {
			case errors.Is(err, domain.ErrScanInProgress):
				logger.Debug("Scan of %s already running", dir)
			case err != nil && ctx.Err() == nil:
				logger.Error(err, "Scheduled scan of %s failed", dir)
			}
		}()
	}
}

func (s *RescanScheduler) isDue(ctx context.Context, dir string, lastRun, now time.Time) bool {
	last := lastRun
	if s.history != nil {
		abs, err := filepath.Abs(dir)
		if err == nil {
			if rec, err := s.history.LastScan(ctx, abs); err == nil && rec != nil && rec.StartedAt.After(last) {
				last = rec.StartedAt
			}
		}
	}
	return last.IsZero() || !now.Before(last.Add(s.settings.ScanInterval))
}

// scan runs one ingestion of root and records it.
func (s *RescanScheduler) scan(ctx context.Context, root string) error {
	record := domain.ScanRecord{Root: root, StartedAt: s.now()}

	report, err := s.ingestor.ProcessDirectory(ctx, root, s.settings.ChunkSize)
	record.EndedAt = s.now()
	record.FilesProcessed = report.Processed()
	record.ChunksWritten = report.ChunksWritten
	if err != nil {
		record.Error = err.Error()
	}

	if s.history != nil {
		// Record even when ctx is done so the failure is visible.
		hctx := context.WithoutCancel(ctx)
		if herr := s.history.RecordScan(hctx, record); herr != nil {
			logger.Warn("Failed to record scan of %s: %v", root, herr)
		} else if herr := s.history.PruneScans(hctx, scanHistoryKeep); herr != nil {
			logger.Warn("Failed to prune scan history: %v", herr)
		}
	}
	return err
}
