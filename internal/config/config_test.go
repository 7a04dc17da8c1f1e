package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tracker.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad_Embedded(t *testing.T) {
	path := writeConfig(t, `
backend:
  kind: embedded
  embedded:
    path: /var/lib/tracker/collections.db
logging:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, KindEmbedded, cfg.Backend.Kind)
	assert.Equal(t, "/var/lib/tracker/collections.db", cfg.Backend.Embedded.Path)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.False(t, cfg.Backend.RebuildLegacySchema)
	assert.Equal(t, "/var/lib/tracker/collections.yml", cfg.Legacy.ImportPath,
		"legacy file defaults next to the embedded database")
}

func TestLoad_NetworkedWithPool(t *testing.T) {
	path := writeConfig(t, `
backend:
  kind: networked
  networked:
    host: db.internal
    port: 5433
    database: collections
    username: tracker
    password: hunter2
    pool:
      max_size: 10
      min_idle: 2
      connection_timeout_ms: 30000
      idle_timeout_ms: 600000
      max_lifetime_ms: 1800000
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, KindNetworked, cfg.Backend.Kind)
	assert.Equal(t, "db.internal", cfg.Backend.Networked.Host)
	assert.Equal(t, 5433, cfg.Backend.Networked.Port)
	require.NotNil(t, cfg.Backend.Networked.Pool)
	assert.Equal(t, 10, cfg.Backend.Networked.Pool.MaxSize)
	assert.Equal(t, 1800000, cfg.Backend.Networked.Pool.MaxLifetimeMs)
}

func TestLoad_PoolOmitted(t *testing.T) {
	path := writeConfig(t, `
backend:
  kind: networked
  networked:
    database: collections
    username: tracker
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Nil(t, cfg.Backend.Networked.Pool, "pool section is optional")
	assert.Equal(t, "localhost", cfg.Backend.Networked.Host)
	assert.Equal(t, 5432, cfg.Backend.Networked.Port)
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `{}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, KindEmbedded, cfg.Backend.Kind, "embedded is the default backend")
	assert.NotEmpty(t, cfg.Backend.Embedded.Path)
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("TRACKER_TEST_PASSWORD", "s3cret")
	path := writeConfig(t, `
backend:
  kind: networked
  networked:
    database: collections
    username: tracker
    password: ${TRACKER_TEST_PASSWORD}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.Backend.Networked.Password)
}

func TestLoad_InvalidKind(t *testing.T) {
	path := writeConfig(t, `
backend:
  kind: oracle
`)

	_, err := Load(path)
	assert.ErrorContains(t, err, "backend.kind")
}

func TestLoad_NetworkedMissingDatabase(t *testing.T) {
	path := writeConfig(t, `
backend:
  kind: networked
  networked:
    username: tracker
`)

	_, err := Load(path)
	assert.ErrorContains(t, err, "backend.networked.database")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
