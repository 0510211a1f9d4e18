// Package sqlite provides the SQLite-backed implementation of the
// document ledger.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO, enabling easy cross-compilation. It records which
// repositories have been ingested, which documents each one contains, and
// which paths are excluded from future ingests. Chunk text and embeddings
// live in the vector store; the ledger only keeps the per-document chunk
// counts and content digests needed to skip unchanged files.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.docdex/data/metadata.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
