package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createLegacyDatabase writes a collections table in the pre-surrogate-key
// shape (user_id as single-column primary key, no id column) with one row.
func createLegacyDatabase(t *testing.T, path string) {
	t.Helper()

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`
		CREATE TABLE collections (
			user_id VARCHAR(36) PRIMARY KEY,
			item_kind VARCHAR(100) NOT NULL
		)
	`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO collections (user_id, item_kind) VALUES (?, ?)`,
		userA.String(), "APPLE")
	require.NoError(t, err)
}

func TestEnsureSchema_FreshDatabase(t *testing.T) {
	b := setupTestBackend(t)

	// Re-running against an up-to-date schema is a no-op
	require.NoError(t, b.EnsureSchema(context.Background()))
}

func TestEnsureSchema_LegacyLayout_GateOff(t *testing.T) {
	path := filepath.Join(t.TempDir(), "collections.db")
	createLegacyDatabase(t, path)

	opts := Options{Kind: Embedded, Embedded: EmbeddedOptions{Path: path}}
	b, err := Open(context.Background(), opts)
	require.NoError(t, err)
	defer b.Close()

	err = b.EnsureSchema(context.Background())
	assert.ErrorIs(t, err, ErrLegacySchema, "destructive rebuild must not run without the gate")
}

func TestEnsureSchema_LegacyLayout_Rebuild(t *testing.T) {
	path := filepath.Join(t.TempDir(), "collections.db")
	createLegacyDatabase(t, path)

	opts := Options{
		Kind:                Embedded,
		Embedded:            EmbeddedOptions{Path: path},
		RebuildLegacySchema: true,
	}
	b, err := Open(context.Background(), opts)
	require.NoError(t, err)
	defer b.Close()

	ctx := context.Background()
	require.NoError(t, b.EnsureSchema(ctx))

	// The rebuild discards legacy rows outright
	count, err := b.CountCollectionRows(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// New shape: surrogate id present, user_id no longer the primary key
	legacy, err := b.hasLegacySchema(ctx)
	require.NoError(t, err)
	assert.False(t, legacy)

	// The unique pair constraint exists: same pair twice yields one row
	require.NoError(t, b.InsertItem(ctx, userA, "APPLE"))
	require.NoError(t, b.InsertItem(ctx, userA, "APPLE"))
	count, err = b.CountCollectionRows(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestHasLegacySchema_NoTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "collections.db")
	opts := Options{Kind: Embedded, Embedded: EmbeddedOptions{Path: path}}
	b, err := Open(context.Background(), opts)
	require.NoError(t, err)
	defer b.Close()

	legacy, err := b.hasLegacySchema(context.Background())
	require.NoError(t, err)
	assert.False(t, legacy, "a missing table is not legacy")
}
