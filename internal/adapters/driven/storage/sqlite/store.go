package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/docask/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/docask/internal/core/domain"
	"github.com/custodia-labs/docask/internal/core/ports/driven"
)

// DatabaseFile is the name of the database inside the data directory.
const DatabaseFile = "chunks.db"

// Store is a unified SQLite-based storage that provides access to
// the store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.docask/data/chunks.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("%w: getting home directory: %w", domain.ErrStorage, err)
		}
		dataDir = filepath.Join(home, ".docask", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("%w: creating data directory: %w", domain.ErrStorage, err)
	}

	dbPath := filepath.Join(dataDir, DatabaseFile)

	// WAL for concurrent readers; foreign_keys is set per connection by the driver.
	// Transactions take the write lock at BEGIN so concurrent upserts queue on
	// busy_timeout instead of failing a read-to-write upgrade.
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_txlock=immediate"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: opening database: %w", domain.ErrStorage, err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
		now:  time.Now,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: running migrations: %w", domain.ErrStorage, err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return storageErr("pinging database", err)
	}
	return nil
}

// ChunkStore returns a ChunkStore interface backed by this store.
func (s *Store) ChunkStore() driven.ChunkStore {
	return &chunkStore{store: s}
}

// ScanHistory returns a ScanHistory interface backed by this store.
func (s *Store) ScanHistory() driven.ScanHistory {
	return &scanHistory{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if err := s.applyMigration(version, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

func (s *Store) applyMigration(version int, script string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(script); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		return err
	}
	return tx.Commit()
}

// ==================== Chunk Store ====================

// chunkStore implements driven.ChunkStore.
type chunkStore struct {
	store *Store
}

var _ driven.ChunkStore = (*chunkStore)(nil)

// Upsert replaces the file and its chunks unless hash and mtime are unchanged.
func (s *chunkStore) Upsert(
	ctx context.Context, file domain.TrackedFile, chunks []domain.ChunkInput,
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

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return result, storageErr("beginning transaction", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var (
		existingID   string
		existingHash string
		existingMod  int64
	)
	err = tx.QueryRowContext(ctx,
		"SELECT id, hash, modified_at FROM files WHERE path = ?", file.Path,
	).Scan(&existingID, &existingHash, &existingMod)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// new file
	case err != nil:
		return result, storageErr("looking up file", err)
	default:
		if existingHash == file.Hash && existingMod == file.ModifiedAt.UnixNano() {
			result.Skipped = true
			return result, nil
		}
		if err := deleteFileTx(ctx, tx, existingID); err != nil {
			return result, err
		}
		result.Replaced = true
	}

	now := s.store.now()
	if file.ID == "" {
		file.ID = uuid.NewString()
	}
	if file.Name == "" {
		file.Name = filepath.Base(file.Path)
	}
	if file.CreatedAt.IsZero() {
		file.CreatedAt = now
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO files (id, path, name, hash, size, modified_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, file.ID, file.Path, file.Name, file.Hash, file.Size,
		file.ModifiedAt.UnixNano(), file.CreatedAt.UnixNano())
	if err != nil {
		return result, storageErr("saving file", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, file_id, seq, page, content, embedding, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return result, storageErr("preparing statement", err)
	}
	defer stmt.Close()

	for i, c := range chunks {
		page := c.Page
		if page < 1 {
			page = 1
		}
		if _, err := stmt.ExecContext(ctx, uuid.NewString(), file.ID, i, page, c.Text,
			float32SliceToBytes(c.Embedding), now.UnixNano()); err != nil {
			return result, storageErr("saving chunk", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return result, storageErr("committing transaction", err)
	}

	result.ChunksWritten = len(chunks)
	return result, nil
}

// deleteFileTx removes a file and its chunks inside tx.
func deleteFileTx(ctx context.Context, tx *sql.Tx, fileID string) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE file_id = ?", fileID); err != nil {
		return storageErr("deleting chunks", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM files WHERE id = ?", fileID); err != nil {
		return storageErr("deleting file", err)
	}
	return nil
}

// GetFile retrieves a tracked file by absolute path.
func (s *chunkStore) GetFile(ctx context.Context, path string) (*domain.TrackedFile, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, path, name, hash, size, modified_at, created_at
		FROM files WHERE path = ?
	`, path)

	return scanFile(row)
}

// ListFiles returns every tracked file ordered by path.
func (s *chunkStore) ListFiles(ctx context.Context) ([]domain.TrackedFile, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, path, name, hash, size, modified_at, created_at
		FROM files ORDER BY path
	`)
	if err != nil {
		return nil, storageErr("querying files", err)
	}
	defer rows.Close()

	var files []domain.TrackedFile //nolint:prealloc // size unknown from query
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterating files", err)
	}
	return files, nil
}

// DeleteFile removes a file and its chunks.
func (s *chunkStore) DeleteFile(ctx context.Context, path string) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("beginning transaction", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var id string
	err = tx.QueryRowContext(ctx, "SELECT id FROM files WHERE path = ?", path).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return storageErr("looking up file", err)
	}

	if err := deleteFileTx(ctx, tx, id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return storageErr("committing transaction", err)
	}
	return nil
}

const chunkColumns = `c.id, c.file_id, f.name, f.path, c.seq, c.page, c.content, c.embedding, c.created_at`

// AllChunks returns every chunk ordered by file path then sequence.
func (s *chunkStore) AllChunks(ctx context.Context) ([]domain.Chunk, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+chunkColumns+`
		FROM chunks c JOIN files f ON f.id = c.file_id
		ORDER BY f.path, c.seq
	`)
	if err != nil {
		return nil, storageErr("querying chunks", err)
	}
	defer rows.Close()

	return scanChunks(rows)
}

// ChunksForFile returns the chunks of one file ordered by page then sequence.
// fileName may be a display name or an absolute path. When several tracked
// files share a display name, the one with the lowest path is used.
func (s *chunkStore) ChunksForFile(ctx context.Context, fileName string) ([]domain.Chunk, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+chunkColumns+`
		FROM chunks c JOIN files f ON f.id = c.file_id
		WHERE c.file_id = (
			SELECT id FROM files WHERE path = ? OR name = ?
			ORDER BY (path = ?) DESC, path LIMIT 1
		)
		ORDER BY c.page, c.seq
	`, fileName, fileName, fileName)
	if err != nil {
		return nil, storageErr("querying chunks", err)
	}
	defer rows.Close()

	return scanChunks(rows)
}

// Statistics returns file and chunk counts.
func (s *chunkStore) Statistics(ctx context.Context) (domain.Statistics, error) {
	var stats domain.Statistics
	err := s.store.db.QueryRowContext(ctx,
		"SELECT (SELECT COUNT(*) FROM files), (SELECT COUNT(*) FROM chunks)",
	).Scan(&stats.Files, &stats.Chunks)
	if err != nil {
		return stats, storageErr("counting", err)
	}
	return stats, nil
}

// RecentFiles returns names of files created within the window, newest first.
func (s *chunkStore) RecentFiles(ctx context.Context, since time.Duration) ([]string, error) {
	cutoff := s.store.now().Add(-since).UnixNano()
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT name FROM files WHERE created_at >= ?
		ORDER BY created_at DESC, name
	`, cutoff)
	if err != nil {
		return nil, storageErr("querying recent files", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, storageErr("scanning file name", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterating recent files", err)
	}
	return names, nil
}

// ==================== Helper Functions ====================

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrStorage, op, err)
}

// scanFile scans a single file row.
func scanFile(row rowScanner) (*domain.TrackedFile, error) {
	var (
		f                   domain.TrackedFile
		modified, createdAt int64
	)
	if err := row.Scan(&f.ID, &f.Path, &f.Name, &f.Hash, &f.Size, &modified, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, storageErr("scanning file", err)
	}
	f.ModifiedAt = time.Unix(0, modified)
	f.CreatedAt = time.Unix(0, createdAt)
	return &f, nil
}

// scanChunks reads all chunk rows.
func scanChunks(rows *sql.Rows) ([]domain.Chunk, error) {
	var chunks []domain.Chunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		var (
			c             domain.Chunk
			embeddingBlob []byte
			createdAt     int64
		)
		if err := rows.Scan(&c.ID, &c.FileID, &c.FileName, &c.FilePath, &c.Index, &c.Page,
			&c.Text, &embeddingBlob, &createdAt); err != nil {
			return nil, storageErr("scanning chunk", err)
		}
		c.Embedding = bytesToFloat32Slice(embeddingBlob)
		c.CreatedAt = time.Unix(0, createdAt)
		chunks = append(chunks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterating chunks", err)
	}
	return chunks, nil
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
