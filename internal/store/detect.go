// ABOUTME: Detects which backend physically holds live data right now
// ABOUTME: Probes both backends independently of the configured active kind

package store

import (
	"context"
	"log/slog"
	"os"
)

// DetectCurrentBackend reports where the real data currently lives, which may
// differ from the configured kind after a partial migration or manual file
// manipulation. The embedded artifact is probed first: if the file exists and
// its collections table has at least one row, the answer is Embedded.
// Otherwise the networked backend is tried with the configured credentials.
// KindNone means neither backend holds data (or the networked one is
// unreachable).
func DetectCurrentBackend(ctx context.Context, opts Options) BackendKind {
	logger := slog.Default().With("component", "detect")

	if _, err := os.Stat(opts.Embedded.Path); err == nil {
		if backendHasData(ctx, Embedded, opts, logger) {
			return Embedded
		}
	}

	if backendHasData(ctx, Networked, opts, logger) {
		return Networked
	}

	return KindNone
}

// backendHasData opens a direct connection and counts collection rows. Any
// failure (unreachable host, missing table, corrupt file) means the backend is
// not holding usable data; detection never errors.
func backendHasData(ctx context.Context, kind BackendKind, opts Options, logger *slog.Logger) bool {
	b, err := OpenDirect(ctx, kind, opts)
	if err != nil {
		logger.Debug("backend not reachable", "kind", kind, "error", err)
		return false
	}
	defer b.Close()

	count, err := b.CountCollectionRows(ctx)
	if err != nil {
		logger.Debug("backend holds no readable data", "kind", kind, "error", err)
		return false
	}
	return count > 0
}
