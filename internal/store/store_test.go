package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fate101/collection-tracker/internal/items"
)

var (
	userA = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	userB = uuid.MustParse("22222222-2222-2222-2222-222222222222")
)

// setupTestBackend creates a temporary embedded backend with schema applied.
func setupTestBackend(t *testing.T) *Backend {
	t.Helper()
	b := openTestBackend(t, filepath.Join(t.TempDir(), "collections.db"))
	return b
}

func openTestBackend(t *testing.T, path string) *Backend {
	t.Helper()
	opts := Options{
		Kind:     Embedded,
		Embedded: EmbeddedOptions{Path: path},
	}

	b, err := Open(context.Background(), opts)
	require.NoError(t, err)
	require.NoError(t, b.EnsureSchema(context.Background()))

	t.Cleanup(func() {
		b.Close()
	})
	return b
}

func TestBackend_SaveLoadRoundTrip(t *testing.T) {
	b := setupTestBackend(t)
	ctx := context.Background()

	set := items.NewSet("IRON_INGOT", "OAK_LOG", "DIAMOND")
	require.NoError(t, b.SaveCollection(ctx, userA, set))

	loaded, err := b.LoadCollection(ctx, userA)
	require.NoError(t, err)
	assert.True(t, loaded.Equal(set), "loaded set should equal saved set")
}

func TestBackend_SaveCollection_Idempotent(t *testing.T) {
	b := setupTestBackend(t)
	ctx := context.Background()

	set := items.NewSet("COAL", "FLINT")
	require.NoError(t, b.SaveCollection(ctx, userA, set))
	require.NoError(t, b.SaveCollection(ctx, userA, set))

	loaded, err := b.LoadCollection(ctx, userA)
	require.NoError(t, err)
	assert.True(t, loaded.Equal(set))

	count, err := b.CountCollectionRows(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count, "double save should not duplicate rows")
}

func TestBackend_SaveCollection_ReplacesFullSet(t *testing.T) {
	b := setupTestBackend(t)
	ctx := context.Background()

	require.NoError(t, b.SaveCollection(ctx, userA, items.NewSet("COAL", "FLINT", "BONE")))
	require.NoError(t, b.SaveCollection(ctx, userA, items.NewSet("DIAMOND")))

	loaded, err := b.LoadCollection(ctx, userA)
	require.NoError(t, err)
	assert.True(t, loaded.Equal(items.NewSet("DIAMOND")), "save replaces, not merges")
}

func TestBackend_LoadCollection_UnknownUser(t *testing.T) {
	b := setupTestBackend(t)

	loaded, err := b.LoadCollection(context.Background(), userB)
	require.NoError(t, err, "unknown user is an empty set, not an error")
	assert.Equal(t, 0, loaded.Len())
}

func TestBackend_LoadCollection_SkipsInvalidKinds(t *testing.T) {
	b := setupTestBackend(t)
	ctx := context.Background()

	require.NoError(t, b.SaveCollection(ctx, userA, items.NewSet("APPLE", "WHEAT")))

	// Simulate a corrupt row written by an older or foreign build
	_, err := b.db.ExecContext(ctx,
		`INSERT INTO collections (user_id, item_kind) VALUES (?, ?)`,
		userA.String(), "NOT_A_REAL_ITEM")
	require.NoError(t, err)

	loaded, err := b.LoadCollection(ctx, userA)
	require.NoError(t, err, "corrupt rows must not surface as errors")
	assert.True(t, loaded.Equal(items.NewSet("APPLE", "WHEAT")), "rest of the set loads correctly")
}

func TestBackend_LoadAllCollections(t *testing.T) {
	b := setupTestBackend(t)
	ctx := context.Background()

	require.NoError(t, b.SaveCollection(ctx, userA, items.NewSet("APPLE", "EGG")))
	require.NoError(t, b.SaveCollection(ctx, userB, items.NewSet("OBSIDIAN")))

	// A row with a malformed user id is skipped, not fatal
	_, err := b.db.ExecContext(ctx,
		`INSERT INTO collections (user_id, item_kind) VALUES (?, ?)`,
		"not-a-uuid", "APPLE")
	require.NoError(t, err)

	all, err := b.LoadAllCollections(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.True(t, all[userA].Equal(items.NewSet("APPLE", "EGG")))
	assert.True(t, all[userB].Equal(items.NewSet("OBSIDIAN")))
}

func TestBackend_NotificationPreferences(t *testing.T) {
	b := setupTestBackend(t)
	ctx := context.Background()

	suppressed, err := b.LoadSuppressedUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, suppressed, "no stored preference means not suppressed")

	require.NoError(t, b.SaveNotificationPreference(ctx, userA, true))
	require.NoError(t, b.SaveNotificationPreference(ctx, userB, false))

	suppressed, err = b.LoadSuppressedUsers(ctx)
	require.NoError(t, err)
	require.Len(t, suppressed, 1, "false flags are omitted")
	assert.Contains(t, suppressed, userA)

	// Upsert flips the existing row
	require.NoError(t, b.SaveNotificationPreference(ctx, userA, false))
	suppressed, err = b.LoadSuppressedUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, suppressed)
}

func TestBackend_InsertItem_ConflictIgnoring(t *testing.T) {
	b := setupTestBackend(t)
	ctx := context.Background()

	require.NoError(t, b.InsertItem(ctx, userA, "QUARTZ"))
	require.NoError(t, b.InsertItem(ctx, userA, "QUARTZ"), "duplicate pair is a no-op, not an error")

	count, err := b.CountCollectionRows(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestBackend_Close_Idempotent(t *testing.T) {
	opts := Options{
		Kind:     Embedded,
		Embedded: EmbeddedOptions{Path: filepath.Join(t.TempDir(), "collections.db")},
	}
	b, err := Open(context.Background(), opts)
	require.NoError(t, err)

	require.NoError(t, b.Close())
	require.NoError(t, b.Close(), "second close is a no-op")

	var nilBackend *Backend
	require.NoError(t, nilBackend.Close(), "never-opened handle closes cleanly")
}

func TestOpenDirect_UnknownKind(t *testing.T) {
	_, err := OpenDirect(context.Background(), BackendKind("oracle"), Options{})
	assert.Error(t, err)
}
