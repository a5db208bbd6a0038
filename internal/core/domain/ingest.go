package domain

import "time"

// FileOutcome classifies a file seen during ingestion.
type FileOutcome string

// File outcomes.
const (
	FileNew       FileOutcome = "new"
	FileChanged   FileOutcome = "changed"
	FileUnchanged FileOutcome = "unchanged"
	FileEmpty     FileOutcome = "empty"
	FileFailed    FileOutcome = "failed"
)

// IngestReport summarises one ProcessDirectory call.
type IngestReport struct {
	Root           string
	FilesSeen      int
	FilesNew       int
	FilesChanged   int
	FilesUnchanged int
	FilesEmpty     int
	FilesFailed    int
	FilesPruned    int
	ChunksWritten  int
	StartedAt      time.Time
	Duration       time.Duration
}

// Record adds a single file outcome to the report.
func (r *IngestReport) Record(outcome FileOutcome, chunks int) {
	r.FilesSeen++
	switch outcome {
	case FileNew:
		r.FilesNew++
	case FileChanged:
		r.FilesChanged++
	case FileUnchanged:
		r.FilesUnchanged++
	case FileEmpty:
		r.FilesEmpty++
	case FileFailed:
		r.FilesFailed++
	}
	r.ChunksWritten += chunks
}

// Processed returns the number of files written to the store.
func (r IngestReport) Processed() int {
	return r.FilesNew + r.FilesChanged
}
