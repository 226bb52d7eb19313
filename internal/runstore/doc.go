// Package runstore persists the history of alignment runs in SQLite.
//
// Every successful align or align-series invocation records one Run: the
// inputs, the settings used, headline numbers from the alignment and the
// resulting time map as JSON. The CLI lists, shows, removes and prunes runs;
// a stored map can be exported again without re-probing the media.
//
// The database lives at <data_dir>/runs.db, opens in WAL mode and retries
// briefly on SQLITE_BUSY so concurrent invocations do not fail spuriously.
// The schema is versioned; a database written by an incompatible version is
// rejected with ErrSchemaMismatch rather than migrated.
package runstore
