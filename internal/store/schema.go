// ABOUTME: Schema management for the collections and notification_prefs tables
// ABOUTME: Detects the legacy pre-surrogate-key layout and performs the gated rebuild

package store

import (
	"context"
	"fmt"
)

// EnsureSchema creates both tables if absent. Before creating it inspects an
// existing collections table: the pre-surrogate-key layout (user_id as the
// single-column primary key, no id column) is treated as legacy schema. The
// rebuild drops both tables outright, so it only runs when the backend was
// opened with RebuildLegacySchema set; otherwise ErrLegacySchema is returned
// and the store must refuse to come up.
func (b *Backend) EnsureSchema(ctx context.Context) error {
	legacy, err := b.hasLegacySchema(ctx)
	if err != nil {
		// Introspection failure is not fatal; table creation below surfaces
		// any real schema problem.
		b.logger.Warn("could not inspect collections table layout", "error", err)
	}

	if legacy {
		if !b.rebuild {
			return ErrLegacySchema
		}
		b.logger.Info("legacy collections layout detected, rebuilding tables")
		if _, err := b.db.ExecContext(ctx, b.dialect.dropCollections()); err != nil {
			return fmt.Errorf("dropping collections table: %w", err)
		}
		if _, err := b.db.ExecContext(ctx, b.dialect.dropPrefs()); err != nil {
			return fmt.Errorf("dropping notification_prefs table: %w", err)
		}
	}

	if _, err := b.db.ExecContext(ctx, b.dialect.createCollections()); err != nil {
		return fmt.Errorf("creating collections table: %w", err)
	}
	if _, err := b.db.ExecContext(ctx, b.dialect.createPrefs()); err != nil {
		return fmt.Errorf("creating notification_prefs table: %w", err)
	}

	b.logger.Debug("schema ensured")
	return nil
}

// hasLegacySchema reports whether an existing collections table still uses
// user_id as its primary key without the surrogate id column. Schema shape is
// the only version signal; there is no version table.
func (b *Backend) hasLegacySchema(ctx context.Context) (bool, error) {
	var count int
	if err := b.db.QueryRowContext(ctx, b.dialect.collectionsExists()).Scan(&count); err != nil {
		return false, fmt.Errorf("checking collections table existence: %w", err)
	}
	if count == 0 {
		return false, nil
	}

	rows, err := b.db.QueryContext(ctx, b.dialect.collectionsColumns())
	if err != nil {
		return false, fmt.Errorf("reading collections columns: %w", err)
	}
	defer rows.Close()

	var hasIDColumn, userIDIsPrimary bool
	for rows.Next() {
		var name string
		var pk int
		if err := rows.Scan(&name, &pk); err != nil {
			return false, fmt.Errorf("scanning column row: %w", err)
		}
		if name == "id" {
			hasIDColumn = true
		}
		if name == "user_id" && pk == 1 {
			userIDIsPrimary = true
		}
	}
	if err := rows.Err(); err != nil {
		return false, fmt.Errorf("iterating column rows: %w", err)
	}

	return userIDIsPrimary && !hasIDColumn, nil
}
