// ABOUTME: Backend connector producing live connection handles for either backend kind
// ABOUTME: Encapsulates DSN construction, pool tuning, and connection lifecycle

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Backend is a live connection to one storage backend. All operations run
// against the single underlying handle; the caller serializes access per user.
type Backend struct {
	db      *sql.DB
	kind    BackendKind
	dialect dialect
	path    string // embedded artifact path, empty for networked
	rebuild bool
	logger  *slog.Logger
}

// Open opens a connection to the backend configured as active.
func Open(ctx context.Context, opts Options) (*Backend, error) {
	return OpenDirect(ctx, opts.Kind, opts)
}

// OpenDirect opens a connection to a specific backend kind regardless of which
// one is configured as active. The detector and migrator use this to probe and
// copy without touching the active handle; the caller owns the returned
// connection and must close it.
func OpenDirect(ctx context.Context, kind BackendKind, opts Options) (*Backend, error) {
	switch kind {
	case Embedded:
		return openEmbedded(opts.Embedded, opts.RebuildLegacySchema)
	case Networked:
		return openNetworked(ctx, opts.Networked, opts.RebuildLegacySchema)
	default:
		return nil, fmt.Errorf("unknown backend kind %q", kind)
	}
}

func openEmbedded(opts EmbeddedOptions, rebuild bool) (*Backend, error) {
	logger := slog.Default().With("component", "store", "backend", Embedded)

	// Ensure parent directory exists
	dir := filepath.Dir(opts.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", opts.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	return &Backend{
		db:      db,
		kind:    Embedded,
		dialect: sqliteDialect{},
		path:    opts.Path,
		rebuild: rebuild,
		logger:  logger,
	}, nil
}

func openNetworked(ctx context.Context, opts NetworkedOptions, rebuild bool) (*Backend, error) {
	logger := slog.Default().With("component", "store", "backend", Networked)

	dsn := fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=disable",
		opts.Host, opts.Port, opts.Database, opts.Username, opts.Password)
	if p := opts.Pool; p != nil && p.ConnectionTimeoutMs > 0 {
		// connect_timeout is whole seconds; round up so small values still apply
		dsn += fmt.Sprintf(" connect_timeout=%d", (p.ConnectionTimeoutMs+999)/1000)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if p := opts.Pool; p != nil {
		if p.MaxSize > 0 {
			db.SetMaxOpenConns(p.MaxSize)
		}
		if p.MinIdle > 0 {
			db.SetMaxIdleConns(p.MinIdle)
		}
		if p.MaxLifetimeMs > 0 {
			db.SetConnMaxLifetime(time.Duration(p.MaxLifetimeMs) * time.Millisecond)
		}
		if p.IdleTimeoutMs > 0 {
			db.SetConnMaxIdleTime(time.Duration(p.IdleTimeoutMs) * time.Millisecond)
		}
	}

	// database/sql connects lazily; fail now so an unreachable host or bad
	// credentials surface at open time.
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to %s:%d/%s: %w", opts.Host, opts.Port, opts.Database, err)
	}

	return &Backend{
		db:      db,
		kind:    Networked,
		dialect: postgresDialect{},
		rebuild: rebuild,
		logger:  logger,
	}, nil
}

// Kind reports which backend variant this connection talks to.
func (b *Backend) Kind() BackendKind {
	return b.kind
}

// Path returns the embedded artifact location, or "" for a networked backend.
func (b *Backend) Path() string {
	return b.path
}

// Close releases the underlying handle. Closing an already-closed or
// never-opened backend is a no-op.
func (b *Backend) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	err := b.db.Close()
	b.db = nil
	if err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	b.logger.Info("backend connection closed")
	return nil
}
