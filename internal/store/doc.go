// Package store persists per-user collected-item sets and notification
// preferences, and migrates that data between storage backends.
//
// # Architecture
//
// A Backend is a live connection to one of two variants:
//
//   - Embedded: file-resident SQLite (modernc.org/sqlite), no server process
//   - Networked: client/server PostgreSQL (lib/pq) with optional pool tuning
//
// Both share one logical schema; everything backend-specific (DDL column
// types, placeholder style, conflict-ignoring insert and upsert syntax,
// introspection queries) lives behind the internal dialect seam, so the
// operations themselves carry no kind-conditionals.
//
// # Schema
//
// Two tables, created by EnsureSchema:
//
//	collections(id surrogate key, user_id, item_kind, collected_at,
//	            UNIQUE(user_id, item_kind))
//	notification_prefs(user_id PRIMARY KEY, suppressed DEFAULT FALSE)
//
// Schema shape doubles as the version signal: a collections table keyed
// directly on user_id with no surrogate id is the legacy layout. Rebuilding
// it drops data, so the rebuild is gated behind an explicit option.
//
// # Detection and migration
//
// DetectCurrentBackend answers "where does the data physically live right
// now", ignoring which backend is configured. The Migrator copies everything
// from that backend into the configured target over direct connections
// (OpenDirect), renames the embedded artifact to a .backup suffix only after
// a fully successful copy, and then asks its owner to reconnect. Failures are
// classified by phase: ErrNoSourceData, ErrAlreadyAtTarget, ErrCopyFailed,
// ErrReconnectFailed.
//
// ImportLegacyFile is the separate one-time bootstrap path for the
// pre-database YAML flat file; the .backup rename makes it idempotent.
//
// # Data integrity
//
// Reads are best-effort tolerant: a row with a malformed user id or an item
// kind outside the vocabulary is skipped and logged, never surfaced as an
// error. Connection and schema failures always propagate.
package store
