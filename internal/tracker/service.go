// ABOUTME: Host-facing collection service owning the active backend connection
// ABOUTME: Primes in-memory caches at startup and writes through to the store

package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/fate101/collection-tracker/internal/config"
	"github.com/fate101/collection-tracker/internal/items"
	"github.com/fate101/collection-tracker/internal/store"
)

// Service is the single owner of the active backend connection. The event
// layer calls RecordItem/SetSuppressed when its own logic decides something
// changed; reads are served from caches primed at startup, with the store as
// the source of truth.
type Service struct {
	opts   store.Options
	legacy string
	logger *slog.Logger

	mu          sync.Mutex
	backend     *store.Backend
	collections map[uuid.UUID]items.Set
	suppressed  map[uuid.UUID]struct{}
}

// New builds a service from configuration. Nothing is opened until Start.
func New(cfg *config.Config) *Service {
	return &Service{
		opts:        StoreOptions(cfg),
		legacy:      cfg.Legacy.ImportPath,
		logger:      slog.Default().With("component", "tracker"),
		collections: make(map[uuid.UUID]items.Set),
		suppressed:  make(map[uuid.UUID]struct{}),
	}
}

// StoreOptions maps the configuration surface onto store options.
func StoreOptions(cfg *config.Config) store.Options {
	kind := store.Embedded
	if cfg.Backend.Kind == config.KindNetworked {
		kind = store.Networked
	}

	opts := store.Options{
		Kind:                kind,
		Embedded:            store.EmbeddedOptions{Path: cfg.Backend.Embedded.Path},
		RebuildLegacySchema: cfg.Backend.RebuildLegacySchema,
		Networked: store.NetworkedOptions{
			Host:     cfg.Backend.Networked.Host,
			Port:     cfg.Backend.Networked.Port,
			Database: cfg.Backend.Networked.Database,
			Username: cfg.Backend.Networked.Username,
			Password: cfg.Backend.Networked.Password,
		},
	}
	if p := cfg.Backend.Networked.Pool; p != nil {
		opts.Networked.Pool = &store.PoolOptions{
			MaxSize:             p.MaxSize,
			MinIdle:             p.MinIdle,
			ConnectionTimeoutMs: p.ConnectionTimeoutMs,
			IdleTimeoutMs:       p.IdleTimeoutMs,
			MaxLifetimeMs:       p.MaxLifetimeMs,
		}
	}
	return opts
}

// Start opens the configured backend, ensures schema, runs the one-shot
// legacy import if the flat-file artifact exists, and primes the caches.
// Any connection or schema failure is fatal; the service must not come up.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	backend, err := store.Open(ctx, s.opts)
	if err != nil {
		return fmt.Errorf("opening backend: %w", err)
	}
	if err := backend.EnsureSchema(ctx); err != nil {
		backend.Close()
		return fmt.Errorf("ensuring schema: %w", err)
	}

	if res, err := store.ImportLegacyFile(ctx, s.legacy, backend); err != nil {
		backend.Close()
		return fmt.Errorf("importing legacy data: %w", err)
	} else if res != nil {
		s.logger.Info("imported legacy collections",
			"users", res.Users, "items", res.Items, "skipped", res.Skipped)
	}

	s.backend = backend
	if err := s.primeLocked(ctx); err != nil {
		backend.Close()
		s.backend = nil
		return err
	}

	s.logger.Info("tracker started", "backend", backend.Kind(), "users", len(s.collections))
	return nil
}

// primeLocked reloads both caches from the active backend. Caller holds mu.
func (s *Service) primeLocked(ctx context.Context) error {
	collections, err := s.backend.LoadAllCollections(ctx)
	if err != nil {
		return fmt.Errorf("loading collections: %w", err)
	}
	suppressed, err := s.backend.LoadSuppressedUsers(ctx)
	if err != nil {
		return fmt.Errorf("loading notification preferences: %w", err)
	}
	s.collections = collections
	s.suppressed = suppressed
	return nil
}

// Shutdown closes the active connection. Safe to call more than once.
func (s *Service) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	backend := s.backend
	s.backend = nil
	return backend.Close()
}

// reinitialize closes the current handle and reopens against the configured
// backend kind, repriming caches. Used after a migration switches backends.
func (s *Service) reinitialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.backend.Close()
	s.backend = nil

	backend, err := store.Open(ctx, s.opts)
	if err != nil {
		return fmt.Errorf("reopening backend: %w", err)
	}
	if err := backend.EnsureSchema(ctx); err != nil {
		backend.Close()
		return fmt.Errorf("ensuring schema: %w", err)
	}

	s.backend = backend
	if err := s.primeLocked(ctx); err != nil {
		backend.Close()
		s.backend = nil
		return err
	}

	s.logger.Info("backend reinitialized", "backend", backend.Kind())
	return nil
}

// RecordItem marks kind as collected for user and persists the updated set.
// Returns true when the item is newly collected; recording an already-held
// kind changes nothing and does not hit the store.
func (s *Service) RecordItem(ctx context.Context, user uuid.UUID, kind items.Kind) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.collections[user]
	if !ok {
		set = items.NewSet()
		s.collections[user] = set
	}
	if set.Contains(kind) {
		return false, nil
	}

	set.Add(kind)
	if err := s.backend.SaveCollection(ctx, user, set); err != nil {
		delete(set, kind)
		return false, err
	}
	return true, nil
}

// Collection returns a copy of the user's cached set; empty for unknown users.
func (s *Service) Collection(user uuid.UUID) items.Set {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := items.NewSet()
	for k := range s.collections[user] {
		out.Add(k)
	}
	return out
}

// SetSuppressed persists the user's notification preference and updates the cache.
func (s *Service) SetSuppressed(ctx context.Context, user uuid.UUID, suppressed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.SaveNotificationPreference(ctx, user, suppressed); err != nil {
		return err
	}
	if suppressed {
		s.suppressed[user] = struct{}{}
	} else {
		delete(s.suppressed, user)
	}
	return nil
}

// IsSuppressed reports whether collection notifications are suppressed for
// user. Users without a stored preference default to not suppressed.
func (s *Service) IsSuppressed(user uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.suppressed[user]
	return ok
}

// CompletionPercent is the share of the vocabulary the user has collected.
func (s *Service) CompletionPercent(user uuid.UUID) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return float64(s.collections[user].Len()) * 100.0 / float64(items.Count())
}

// RequestMigration runs detection and the migration engine end-to-end against
// the configured target, then reinitializes the active connection. The result
// is always non-nil and carries a human-readable reason.
func (s *Service) RequestMigration(ctx context.Context) (*store.MigrationResult, error) {
	migrator := store.NewMigrator(s.opts, s.reinitialize)
	return migrator.Migrate(ctx)
}
