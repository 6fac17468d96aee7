// Package sqlite provides the SQLite-backed search history store.
//
// The adapter uses modernc.org/sqlite, a pure Go SQLite implementation
// that requires no CGO, enabling easy cross-compilation. Store
// interfaces are exposed through wrapper types sharing one database
// connection:
//
//   - HistoryStore: completed-search record persistence
//
// # Schema
//
// The database schema is managed through versioned migrations embedded
// from the migrations/ directory. Each migration is a pair of .up.sql
// and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.metcha/data/history.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking
// provided by SQLite in WAL mode.
package sqlite
