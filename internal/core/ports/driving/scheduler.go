package driving

import "context"

// RescanScheduler runs periodic ingestion of configured directories.
type RescanScheduler interface {
	// Start begins running scheduled scans.
	// Blocks until context is cancelled or Stop is called.
	Start(ctx context.Context) error

	// Stop gracefully stops the scheduler and waits for running scans.
	Stop() error

	// Trigger scans root now. It returns domain.ErrScanInProgress if a scan
	// of the same root is already running.
	Trigger(ctx context.Context, root string) error
}
