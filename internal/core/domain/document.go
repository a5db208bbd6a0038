package domain

import (
	"path/filepath"
	"time"
)

// TrackedFile is an ingested file. Its identity is the absolute path.
// A TrackedFile is never mutated in place: when its content changes the
// stored record and all of its chunks are swapped atomically.
type TrackedFile struct {
	// ID is the unique identifier for the file record.
	ID string

	// Path is the absolute path on disk. At most one TrackedFile exists per path.
	Path string

	// Name is the display name (base name of Path).
	Name string

	// Hash is the lowercase hex MD5 digest of the file bytes.
	Hash string

	// Size is the file size in bytes.
	Size int64

	// ModifiedAt is the source filesystem modification time.
	ModifiedAt time.Time

	// CreatedAt is when the file was first ingested.
	CreatedAt time.Time
}

// DisplayName returns Name, falling back to the base of Path.
func (f TrackedFile) DisplayName() string {
	if f.Name != "" {
		return f.Name
	}
	return filepath.Base(f.Path)
}

// SameContent reports whether other has the same hash and modification time.
// The chunk store treats such an upsert as a no-op.
func (f TrackedFile) SameContent(other TrackedFile) bool {
	return f.Hash == other.Hash && f.ModifiedAt.Equal(other.ModifiedAt)
}

// Chunk is a searchable span of text belonging to exactly one TrackedFile.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// FileID links to the owning TrackedFile.
	FileID string

	// FileName is the display name of the owning file.
	FileName string

	// FilePath is the absolute path of the owning file.
	FilePath string

	// Index is the 0-based position within the file. Indices are contiguous.
	Index int

	// Page is the 1-based source page. Unpaginated documents use 1.
	Page int

	// Text is the chunk content. Never empty after trimming.
	Text string

	// Embedding is the optional vector representation used by vector search.
	Embedding []float32

	// CreatedAt is when the chunk was stored.
	CreatedAt time.Time
}

// HasEmbedding reports whether the chunk carries a vector.
func (c Chunk) HasEmbedding() bool {
	return len(c.Embedding) > 0
}

// ChunkInput is a chunk candidate handed to the chunk store.
// The store assigns Index from the position in the slice.
type ChunkInput struct {
	Page      int
	Text      string
	Embedding []float32
}

// Page is a single page of extracted text.
type Page struct {
	// Number is the 1-based page ordinal.
	Number int

	// Text is the raw extracted text.
	Text string
}

// UpsertResult describes what a chunk store upsert did.
type UpsertResult struct {
	// Skipped is true when the stored file had the same hash and mtime.
	Skipped bool

	// Replaced is true when a previous version of the file was removed.
	Replaced bool

	// ChunksWritten is the number of chunks inserted.
	ChunksWritten int
}

// Statistics summarises the contents of the chunk store.
type Statistics struct {
	Files  int
	Chunks int
}
