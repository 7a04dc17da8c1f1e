package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fate101/collection-tracker/internal/items"
)

func TestImportLegacyFile_NoFile(t *testing.T) {
	b := setupTestBackend(t)

	res, err := ImportLegacyFile(context.Background(), filepath.Join(t.TempDir(), "collections.yml"), b)
	require.NoError(t, err)
	assert.Nil(t, res, "absent artifact means nothing to import")
}

func TestImportLegacyFile_ValidatesAndBacksUp(t *testing.T) {
	b := setupTestBackend(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "collections.yml")
	legacy := `
"11111111-1111-1111-1111-111111111111":
  - IRON_INGOT
  - NOT_A_REAL_ITEM
"not-a-uuid":
  - APPLE
`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0644))

	res, err := ImportLegacyFile(ctx, path, b)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, 1, res.Users)
	assert.Equal(t, 1, res.Items)
	assert.Equal(t, 2, res.Skipped, "bad uuid and bad item kind are both dropped")
	assert.Equal(t, path+".backup", res.BackupPath)

	loaded, err := b.LoadCollection(ctx, userA)
	require.NoError(t, err)
	assert.True(t, loaded.Equal(items.NewSet("IRON_INGOT")), "only the valid kind survives")

	// The original was renamed away
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
	_, statErr = os.Stat(path + ".backup")
	assert.NoError(t, statErr)
}

func TestImportLegacyFile_IdempotentOnRerun(t *testing.T) {
	b := setupTestBackend(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "collections.yml")
	legacy := `"11111111-1111-1111-1111-111111111111": [IRON_INGOT, APPLE]`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0644))

	res, err := ImportLegacyFile(ctx, path, b)
	require.NoError(t, err)
	require.NotNil(t, res)

	// Second start: the rename means there is nothing left to import
	res, err = ImportLegacyFile(ctx, path, b)
	require.NoError(t, err)
	assert.Nil(t, res)

	count, err := b.CountCollectionRows(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count, "no duplicate rows after rerun")
}

func TestImportLegacyFile_MalformedYAML(t *testing.T) {
	b := setupTestBackend(t)

	path := filepath.Join(t.TempDir(), "collections.yml")
	require.NoError(t, os.WriteFile(path, []byte("{not yaml"), 0644))

	_, err := ImportLegacyFile(context.Background(), path, b)
	assert.Error(t, err)

	// A parse failure must not consume the artifact
	_, statErr := os.Stat(path)
	assert.NoError(t, statErr)
}
