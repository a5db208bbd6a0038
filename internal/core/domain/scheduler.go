package domain

import "time"

// ScanRecord is the history entry for one directory scan.
type ScanRecord struct {
	// ID is the unique identifier for the record.
	ID string

	// Root is the scanned directory.
	Root string

	// StartedAt is when the scan started.
	StartedAt time.Time

	// EndedAt is when the scan completed.
	EndedAt time.Time

	// FilesProcessed counts new and changed files.
	FilesProcessed int

	// ChunksWritten counts inserted chunks.
	ChunksWritten int

	// Error contains the error message if the scan failed.
	Error string
}

// Success reports whether the scan completed without error.
func (r ScanRecord) Success() bool {
	return r.Error == ""
}

// Duration returns how long the scan took.
func (r ScanRecord) Duration() time.Duration {
	return r.EndedAt.Sub(r.StartedAt)
}
