// ABOUTME: CRUD operations for per-user item sets and notification preferences
// ABOUTME: Reads are tolerant of invalid rows; single bad entries are skipped and logged

package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/fate101/collection-tracker/internal/items"
)

// SaveCollection replaces the user's entire persisted set: existing rows are
// deleted, then every given kind is inserted with a conflict-ignoring insert.
// collected_at timestamps are rewritten, so only the final set state survives.
func (b *Backend) SaveCollection(ctx context.Context, user uuid.UUID, set items.Set) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, b.dialect.deleteUserItems(), user.String()); err != nil {
		return fmt.Errorf("deleting existing collection: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, b.dialect.insertItem())
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, kind := range set.Sorted() {
		if _, err := stmt.ExecContext(ctx, user.String(), string(kind)); err != nil {
			return fmt.Errorf("inserting item %s: %w", kind, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing collection: %w", err)
	}

	b.logger.Debug("saved collection", "user", user, "items", set.Len())
	return nil
}

// InsertItem records a single (user, kind) pair with a conflict-ignoring
// insert. Inserting an existing pair is a no-op, not an error. The migration
// copy uses this so it never deletes destination rows.
func (b *Backend) InsertItem(ctx context.Context, user uuid.UUID, kind items.Kind) error {
	if _, err := b.db.ExecContext(ctx, b.dialect.insertItem(), user.String(), string(kind)); err != nil {
		return fmt.Errorf("inserting item %s: %w", kind, err)
	}
	return nil
}

// LoadCollection returns the user's persisted set. A user with no rows gets an
// empty set, not an error. Rows naming an unknown item kind are skipped and
// logged; they never abort the read.
func (b *Backend) LoadCollection(ctx context.Context, user uuid.UUID) (items.Set, error) {
	rows, err := b.db.QueryContext(ctx, b.dialect.selectUserItems(), user.String())
	if err != nil {
		return nil, fmt.Errorf("querying collection: %w", err)
	}
	defer rows.Close()

	set := items.NewSet()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning collection row: %w", err)
		}
		kind, err := items.Parse(name)
		if err != nil {
			b.logger.Warn("skipping invalid item kind in database", "user", user, "item_kind", name)
			continue
		}
		set.Add(kind)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating collection rows: %w", err)
	}

	return set, nil
}

// LoadAllCollections bulk-reads every row grouped by user. Rows with a
// malformed user id or unknown item kind are skipped and logged.
func (b *Backend) LoadAllCollections(ctx context.Context) (map[uuid.UUID]items.Set, error) {
	rows, err := b.db.QueryContext(ctx, b.dialect.selectAllItems())
	if err != nil {
		return nil, fmt.Errorf("querying all collections: %w", err)
	}
	defer rows.Close()

	all := make(map[uuid.UUID]items.Set)
	for rows.Next() {
		var userStr, name string
		if err := rows.Scan(&userStr, &name); err != nil {
			return nil, fmt.Errorf("scanning collection row: %w", err)
		}

		user, err := uuid.Parse(userStr)
		if err != nil {
			b.logger.Warn("skipping row with invalid user id", "user_id", userStr)
			continue
		}
		kind, err := items.Parse(name)
		if err != nil {
			b.logger.Warn("skipping invalid item kind in database", "user", user, "item_kind", name)
			continue
		}

		set, ok := all[user]
		if !ok {
			set = items.NewSet()
			all[user] = set
		}
		set.Add(kind)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating collection rows: %w", err)
	}

	return all, nil
}

// SaveNotificationPreference upserts the user's suppressed flag.
func (b *Backend) SaveNotificationPreference(ctx context.Context, user uuid.UUID, suppressed bool) error {
	if _, err := b.db.ExecContext(ctx, b.dialect.upsertPref(), user.String(), suppressed); err != nil {
		return fmt.Errorf("saving notification preference: %w", err)
	}
	b.logger.Debug("saved notification preference", "user", user, "suppressed", suppressed)
	return nil
}

// LoadSuppressedUsers returns only the users whose suppressed flag is
// currently true. Absent-or-false users are omitted; absence means "not
// suppressed".
func (b *Backend) LoadSuppressedUsers(ctx context.Context) (map[uuid.UUID]struct{}, error) {
	rows, err := b.db.QueryContext(ctx, b.dialect.selectSuppressed())
	if err != nil {
		return nil, fmt.Errorf("querying notification preferences: %w", err)
	}
	defer rows.Close()

	suppressed := make(map[uuid.UUID]struct{})
	for rows.Next() {
		var userStr string
		if err := rows.Scan(&userStr); err != nil {
			return nil, fmt.Errorf("scanning preference row: %w", err)
		}
		user, err := uuid.Parse(userStr)
		if err != nil {
			b.logger.Warn("skipping preference row with invalid user id", "user_id", userStr)
			continue
		}
		suppressed[user] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating preference rows: %w", err)
	}

	return suppressed, nil
}

// CountCollectionRows returns the raw number of collection rows. The detector
// uses this to decide whether a backend holds live data.
func (b *Backend) CountCollectionRows(ctx context.Context) (int, error) {
	var count int
	if err := b.db.QueryRowContext(ctx, b.dialect.countCollections()).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting collection rows: %w", err)
	}
	return count, nil
}
