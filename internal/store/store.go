// ABOUTME: Backend kinds, connection options, and sentinel errors for persistence
// ABOUTME: Defines the option structs shared by the connector, detector, and migrator

package store

import "errors"

// BackendKind names a storage backend variant.
type BackendKind string

const (
	// KindNone means no backend currently holds data (detection result only).
	KindNone BackendKind = ""

	// Embedded is the file-resident SQLite backend.
	Embedded BackendKind = "embedded"

	// Networked is the client/server PostgreSQL backend.
	Networked BackendKind = "networked"
)

// ErrLegacySchema is returned by EnsureSchema when the collections table still
// has the pre-surrogate-key layout and the rebuild gate is off. Rebuilding
// drops the table, so the operator must confirm the data has been captured
// (normally via the legacy flat-file import) before enabling it.
var ErrLegacySchema = errors.New("collections table has the legacy layout; back up its data and enable backend.rebuild_legacy_schema to rebuild")

// Migration failure classes. Each one needs different remediation, so the
// migrator reports them distinctly.
var (
	// ErrNoSourceData means neither backend holds any collection rows.
	ErrNoSourceData = errors.New("no backend currently holds data to migrate")

	// ErrAlreadyAtTarget means the data already lives in the configured backend.
	ErrAlreadyAtTarget = errors.New("data already lives in the configured backend")

	// ErrCopyFailed means the copy to the target backend failed. The source
	// backend is left fully intact.
	ErrCopyFailed = errors.New("copying data to the target backend failed")

	// ErrReconnectFailed means the data was migrated and backed up, but the
	// active connection could not be switched to the new backend. A restart
	// picks up the new backend.
	ErrReconnectFailed = errors.New("reconnecting to the migrated backend failed")
)

// Options carries the connection parameters for both backend variants plus the
// kind currently configured as active. The detector and migrator need both
// parameter sets regardless of which kind is active, so they travel together.
type Options struct {
	Kind      BackendKind
	Embedded  EmbeddedOptions
	Networked NetworkedOptions

	// RebuildLegacySchema gates the destructive legacy-schema rebuild.
	RebuildLegacySchema bool
}

// EmbeddedOptions holds file-resident backend parameters.
type EmbeddedOptions struct {
	Path string
}

// NetworkedOptions holds client/server backend parameters.
type NetworkedOptions struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	Pool     *PoolOptions
}

// PoolOptions is optional connection pool tuning, applied only when present.
type PoolOptions struct {
	MaxSize             int
	MinIdle             int
	ConnectionTimeoutMs int
	IdleTimeoutMs       int
	MaxLifetimeMs       int
}
