package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates a file extension no extractor handles.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrStorage indicates the chunk store is unavailable or corrupt.
	// Fatal to the current operation and never retried internally.
	ErrStorage = errors.New("storage error")

	// ErrExtraction indicates a single file could not be read or parsed.
	// Ingestion logs it and continues with the next file.
	ErrExtraction = errors.New("extraction failed")

	// ErrDirectoryNotFound indicates the ingestion root does not exist.
	ErrDirectoryNotFound = errors.New("directory not found")

	// ErrOracle indicates the generation or embedding oracle failed.
	ErrOracle = errors.New("oracle error")

	// ErrScanInProgress indicates a scan of the same directory is running.
	ErrScanInProgress = errors.New("scan in progress")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Vector search falls back to lexical without it.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
)
