package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docask/internal/core/domain"
	"github.com/custodia-labs/docask/internal/core/ports/driven"
)

// scanHistory implements driven.ScanHistory.
type scanHistory struct {
	store *Store
}

var _ driven.ScanHistory = (*scanHistory)(nil)

// RecordScan persists a scan record.
func (s *scanHistory) RecordScan(ctx context.Context, record domain.ScanRecord) error {
	if record.Root == "" {
		return domain.ErrInvalidInput
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO scan_history (id, root, started_at, ended_at, files_processed, chunks_written, error)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, record.ID, record.Root,
		record.StartedAt.UnixNano(), record.EndedAt.UnixNano(),
		record.FilesProcessed, record.ChunksWritten,
		nullString(record.Error))
	if err != nil {
		return storageErr("recording scan", err)
	}
	return nil
}

// LastScan returns the most recent scan of root.
// Returns nil and no error if root has never been scanned.
func (s *scanHistory) LastScan(ctx context.Context, root string) (*domain.ScanRecord, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, root, started_at, ended_at, files_processed, chunks_written, error
		FROM scan_history
		WHERE root = ?
		ORDER BY started_at DESC
		LIMIT 1
	`, root)

	var (
		r                  domain.ScanRecord
		startedAt, endedAt int64
		errMsg             sql.NullString
	)
	err := row.Scan(&r.ID, &r.Root, &startedAt, &endedAt, &r.FilesProcessed, &r.ChunksWritten, &errMsg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("scanning scan record", err)
	}

	r.StartedAt = time.Unix(0, startedAt)
	r.EndedAt = time.Unix(0, endedAt)
	r.Error = errMsg.String
	return &r, nil
}

// PruneScans keeps the most recent keep records per root.
func (s *scanHistory) PruneScans(ctx context.Context, keep int) error {
	_, err := s.store.db.ExecContext(ctx, `
		DELETE FROM scan_history
		WHERE id NOT IN (
			SELECT id FROM (
				SELECT id, ROW_NUMBER() OVER (PARTITION BY root ORDER BY started_at DESC) AS rn
				FROM scan_history
			) WHERE rn <= ?
		)
	`, keep)
	if err != nil {
		return storageErr("pruning scan history", err)
	}
	return nil
}

// nullString converts an empty string to NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
