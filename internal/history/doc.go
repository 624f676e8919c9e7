// Package history records check runs in a small SQLite database.
//
// Each run captures which file was checked, whether it parsed, and how many
// diagnostics and tolerant-mode recoveries it produced. The CLI uses the
// record for `kbp history`; nothing in the engine depends on it.
//
// The schema is embedded and versioned. A database written by a different
// schema version is rejected with ErrSchemaMismatch rather than migrated.
package history
