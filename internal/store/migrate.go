// ABOUTME: Migration engine copying all data between the embedded and networked backends
// ABOUTME: Detect -> copy -> backup -> reconnect, with distinct failure classes per phase

package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"
)

// MigrationState names the phase a migration reached.
type MigrationState string

const (
	StateIdle            MigrationState = "idle"
	StateDetecting       MigrationState = "detecting"
	StateNoSourceData    MigrationState = "no_source_data"
	StateAlreadyAtTarget MigrationState = "already_at_target"
	StateCopying         MigrationState = "copying"
	StateBackedUp        MigrationState = "backed_up"
	StateReconnecting    MigrationState = "reconnecting"
	StateDone            MigrationState = "done"
)

// MigrationResult reports what a migration did, for operator display.
type MigrationResult struct {
	State      MigrationState
	Source     BackendKind
	Target     BackendKind
	Users      int
	Items      int
	Prefs      int
	BackupPath string
	Reason     string
}

// Migrator copies all data from whichever backend currently holds it into the
// configured target backend. It opens its own direct connections and never
// touches the caller's active handle; after a successful copy and backup it
// invokes reconnect so the owner can switch its active connection.
type Migrator struct {
	opts      Options
	reconnect func(context.Context) error
	logger    *slog.Logger
}

// NewMigrator builds a migrator targeting opts.Kind. reconnect may be nil when
// no active connection needs switching (e.g. one-shot CLI use).
func NewMigrator(opts Options, reconnect func(context.Context) error) *Migrator {
	return &Migrator{
		opts:      opts,
		reconnect: reconnect,
		logger:    slog.Default().With("component", "migrate"),
	}
}

// Migrate runs the full state machine. The returned result is always non-nil
// and describes the terminal state; the error classifies the failure
// (ErrNoSourceData, ErrAlreadyAtTarget, ErrCopyFailed, ErrReconnectFailed).
// The source backend is left untouched until the copy fully succeeds.
func (m *Migrator) Migrate(ctx context.Context) (*MigrationResult, error) {
	res := &MigrationResult{State: StateDetecting, Target: m.opts.Kind}

	source := DetectCurrentBackend(ctx, m.opts)
	res.Source = source

	if source == KindNone {
		res.State = StateNoSourceData
		res.Reason = "no existing data found in either backend; nothing to migrate"
		return res, ErrNoSourceData
	}
	if source == m.opts.Kind {
		res.State = StateAlreadyAtTarget
		res.Reason = fmt.Sprintf("data already lives in the %s backend; no migration needed", source)
		return res, ErrAlreadyAtTarget
	}

	m.logger.Info("starting migration", "source", source, "target", m.opts.Kind)
	res.State = StateCopying

	src, err := OpenDirect(ctx, source, m.opts)
	if err != nil {
		res.Reason = fmt.Sprintf("could not open the %s source backend", source)
		return res, fmt.Errorf("%w: opening source: %v", ErrCopyFailed, err)
	}
	defer src.Close()

	dst, err := OpenDirect(ctx, m.opts.Kind, m.opts)
	if err != nil {
		res.Reason = fmt.Sprintf("could not open the %s target backend", m.opts.Kind)
		return res, fmt.Errorf("%w: opening target: %v", ErrCopyFailed, err)
	}
	defer dst.Close()

	res.Users, res.Items, res.Prefs, err = copyAll(ctx, src, dst)
	if err != nil {
		res.Reason = "copy failed; the source backend is untouched and still holds all data"
		return res, fmt.Errorf("%w: %v", ErrCopyFailed, err)
	}
	m.logger.Info("copy complete", "users", res.Users, "items", res.Items, "prefs", res.Prefs)

	// Only a fully successful copy earns the backup rename: if anything above
	// under-reported, the original artifact is still recoverable.
	res.State = StateBackedUp
	if src.Kind() == Embedded {
		backupPath := src.Path() + ".backup"
		srcPath := src.Path()
		src.Close()
		if err := os.Rename(srcPath, backupPath); err != nil {
			// The data is safely copied; failing to rename only means the next
			// detection run still sees the old artifact first.
			m.logger.Warn("could not back up embedded database file", "path", srcPath, "error", err)
		} else {
			res.BackupPath = backupPath
			m.logger.Info("embedded database backed up", "path", backupPath)
		}
	}

	res.State = StateReconnecting
	if m.reconnect != nil {
		if err := m.reconnect(ctx); err != nil {
			res.Reason = "data migrated and backed up, but the live connection still points at the old backend; restart to pick up the new one"
			return res, fmt.Errorf("%w: %v", ErrReconnectFailed, err)
		}
	}

	res.State = StateDone
	res.Reason = fmt.Sprintf("migrated %d users (%d items, %d preferences) from %s to %s",
		res.Users, res.Items, res.Prefs, source, m.opts.Kind)
	return res, nil
}

// copyAll reads everything from src and writes it into dst with
// conflict-ignoring inserts and upserts. Destination schema is created first.
// The copy is not transactional across backends; a crash mid-copy leaves a
// partial destination, which a rerun completes idempotently.
func copyAll(ctx context.Context, src, dst *Backend) (users, itemCount, prefs int, err error) {
	if err := dst.EnsureSchema(ctx); err != nil {
		return 0, 0, 0, fmt.Errorf("creating target schema: %w", err)
	}

	collections, err := src.LoadAllCollections(ctx)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("reading source collections: %w", err)
	}
	suppressed, err := src.LoadSuppressedUsers(ctx)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("reading source preferences: %w", err)
	}

	for user, set := range collections {
		for _, kind := range set.Sorted() {
			if err := dst.InsertItem(ctx, user, kind); err != nil {
				return users, itemCount, prefs, fmt.Errorf("writing collection for %s: %w", user, err)
			}
			itemCount++
		}
		users++
	}

	for user := range suppressed {
		if err := dst.SaveNotificationPreference(ctx, user, true); err != nil {
			return users, itemCount, prefs, fmt.Errorf("writing preference for %s: %w", user, err)
		}
		prefs++
	}

	return users, itemCount, prefs, nil
}
