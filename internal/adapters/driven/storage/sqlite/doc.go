// Package sqlite backs the vector index and the scheduler store with a
// single SQLite database.
//
// The driver is modernc.org/sqlite, a pure Go translation of SQLite, so
// builds need no CGO and cross-compile cleanly. Two wrapper types share
// one connection pool:
//
//   - VectorIndex: chunk points with embeddings, searched by an
//     in-process cosine scan
//   - SchedulerStore: background task state and run history
//
// # Schema
//
// Versioned .up.sql/.down.sql migrations under migrations/ define the
// schema; pending ones apply on open. Embeddings are stored as
// little-endian float32 blobs.
//
// # Data Location
//
// Unless a data directory is given, the database lives at
// ~/.vaultsync/data/index.db.
//
// # Concurrency
//
// The database opens in WAL mode with a busy timeout, so concurrent
// readers and a writer coexist without explicit locking in Go.
package sqlite
