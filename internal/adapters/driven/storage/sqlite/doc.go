// Package sqlite provides a unified SQLite-based implementation of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements multiple store interfaces
// through a single database connection:
//
//   - RecordSink: Flat record persistence
//   - StateStore: Watermark and key/value state persistence
//   - RunStore: Import run history persistence
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Flat records are stored one field per row, so a record
// is the set of rows sharing an entity and record id.
//
// # Data Location
//
// By default, the database is stored at ~/.mongoflat/data/import.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
