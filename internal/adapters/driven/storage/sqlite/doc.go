// Package sqlite provides a SQLite-based implementation of the chunk store.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements multiple store interfaces
// through a single database connection:
//
//   - ChunkStore: Tracked files and their ordered chunks
//   - ScanHistory: Directory scan records
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
// Chunks reference their file with ON DELETE CASCADE; upserts also delete a
// file's chunks explicitly so no orphan can survive a connection without
// foreign key enforcement.
//
// # Data Location
//
// By default, the database is stored at ~/.docask/data/chunks.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode. Each upsert runs in a single transaction, so readers
// never observe a file with a partial chunk set.
package sqlite
