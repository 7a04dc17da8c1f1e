// ABOUTME: Configuration loading and parsing for collection-tracker
// ABOUTME: Supports YAML files with environment variable expansion and validation

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Backend kind names accepted in backend.kind.
const (
	KindEmbedded  = "embedded"
	KindNetworked = "networked"
)

// Config represents the complete collection-tracker configuration
type Config struct {
	Backend BackendConfig `yaml:"backend"`
	Legacy  LegacyConfig  `yaml:"legacy"`
	Logging LoggingConfig `yaml:"logging"`
}

// BackendConfig selects and parameterizes the storage backend
type BackendConfig struct {
	Kind      string          `yaml:"kind"`
	Embedded  EmbeddedConfig  `yaml:"embedded"`
	Networked NetworkedConfig `yaml:"networked"`

	// RebuildLegacySchema permits the one-time destructive rebuild of a
	// pre-surrogate-key collections table. The rebuild discards rows, so it
	// stays off until the operator confirms the data has been captured
	// elsewhere (normally via the legacy flat-file import).
	RebuildLegacySchema bool `yaml:"rebuild_legacy_schema"`
}

// EmbeddedConfig holds file-resident database configuration
type EmbeddedConfig struct {
	Path string `yaml:"path"`
}

// NetworkedConfig holds client/server database configuration
type NetworkedConfig struct {
	Host     string      `yaml:"host"`
	Port     int         `yaml:"port"`
	Database string      `yaml:"database"`
	Username string      `yaml:"username"`
	Password string      `yaml:"password"`
	Pool     *PoolConfig `yaml:"pool"`
}

// PoolConfig holds optional connection pool tuning. Applied only when the
// section is present; every field is advisory.
type PoolConfig struct {
	MaxSize             int `yaml:"max_size"`
	MinIdle             int `yaml:"min_idle"`
	ConnectionTimeoutMs int `yaml:"connection_timeout_ms"`
	IdleTimeoutMs       int `yaml:"idle_timeout_ms"`
	MaxLifetimeMs       int `yaml:"max_lifetime_ms"`
}

// LegacyConfig locates the pre-database flat-file artifact
type LegacyConfig struct {
	ImportPath string `yaml:"import_path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
// Missing optional fields are filled with defaults before validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// ApplyDefaults fills unset optional fields
func (c *Config) ApplyDefaults() {
	if c.Backend.Kind == "" {
		c.Backend.Kind = KindEmbedded
	}
	if c.Backend.Embedded.Path == "" {
		c.Backend.Embedded.Path = DefaultDatabasePath()
	}
	if c.Backend.Networked.Host == "" {
		c.Backend.Networked.Host = "localhost"
	}
	if c.Backend.Networked.Port == 0 {
		c.Backend.Networked.Port = 5432
	}
	if c.Legacy.ImportPath == "" {
		c.Legacy.ImportPath = filepath.Join(filepath.Dir(c.Backend.Embedded.Path), "collections.yml")
	}
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	switch c.Backend.Kind {
	case KindEmbedded, KindNetworked:
	default:
		return fmt.Errorf("backend.kind must be %q or %q, got %q", KindEmbedded, KindNetworked, c.Backend.Kind)
	}

	if c.Backend.Embedded.Path == "" {
		return fmt.Errorf("backend.embedded.path is required")
	}

	if c.Backend.Kind == KindNetworked {
		if c.Backend.Networked.Database == "" {
			return fmt.Errorf("backend.networked.database is required when backend.kind is networked")
		}
		if c.Backend.Networked.Username == "" {
			return fmt.Errorf("backend.networked.username is required when backend.kind is networked")
		}
	}

	return nil
}

// DefaultConfigPath returns the path to the tracker config file.
// Priority: TRACKER_CONFIG env var > XDG_CONFIG_HOME > ~/.config
func DefaultConfigPath() string {
	if envPath := os.Getenv("TRACKER_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "tracker.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "collection-tracker", "tracker.yaml")
}

// DefaultDatabasePath returns the default embedded database location.
// Priority: XDG_DATA_HOME > ~/.local/share
func DefaultDatabasePath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join("data", "collections.db") // fallback
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	return filepath.Join(dataDir, "collection-tracker", "collections.db")
}
