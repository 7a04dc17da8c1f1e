// ABOUTME: One-shot import of the legacy flat-file collection format
// ABOUTME: Parses the YAML user->items map, validates entries, renames the file to .backup

package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/fate101/collection-tracker/internal/items"
)

// ImportResult summarizes a legacy flat-file import.
type ImportResult struct {
	Users      int
	Items      int
	Skipped    int // invalid user ids or item kinds dropped during parsing
	BackupPath string
}

// ImportLegacyFile imports the pre-database YAML artifact at path into the
// given backend, then renames the artifact to a .backup suffix so subsequent
// starts find nothing to import. Returns (nil, nil) when no artifact exists.
// Entries with an invalid user id or unknown item kind are dropped and logged.
func ImportLegacyFile(ctx context.Context, path string, b *Backend) (*ImportResult, error) {
	logger := slog.Default().With("component", "legacy")

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		logger.Debug("no legacy flat file found", "path", path)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading legacy file: %w", err)
	}

	var raw map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing legacy file: %w", err)
	}

	logger.Info("found legacy flat file, starting import", "path", path, "users", len(raw))
	res := &ImportResult{}

	for userStr, names := range raw {
		user, err := uuid.Parse(userStr)
		if err != nil {
			logger.Warn("skipping legacy entry with invalid user id", "user_id", userStr)
			res.Skipped++
			continue
		}

		set := items.NewSet()
		for _, name := range names {
			kind, err := items.Parse(name)
			if err != nil {
				logger.Warn("skipping invalid item kind in legacy file", "user", user, "item_kind", name)
				res.Skipped++
				continue
			}
			set.Add(kind)
		}
		if set.Len() == 0 {
			continue
		}

		if err := b.SaveCollection(ctx, user, set); err != nil {
			return res, fmt.Errorf("importing collection for %s: %w", user, err)
		}
		res.Users++
		res.Items += set.Len()
	}

	// The rename is what makes the import one-shot: its absence on the next
	// start means "already imported".
	backupPath := path + ".backup"
	if err := os.Rename(path, backupPath); err != nil {
		return res, fmt.Errorf("backing up legacy file: %w", err)
	}
	res.BackupPath = backupPath

	logger.Info("legacy import complete", "users", res.Users, "items", res.Items, "skipped", res.Skipped, "backup", backupPath)
	return res, nil
}
