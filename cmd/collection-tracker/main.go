// ABOUTME: Entry point for the collection-tracker operator CLI
// ABOUTME: Exposes startup, status, migration, legacy import, and leaderboard commands

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"

	"github.com/fate101/collection-tracker/internal/config"
	"github.com/fate101/collection-tracker/internal/items"
	"github.com/fate101/collection-tracker/internal/store"
	"github.com/fate101/collection-tracker/internal/tracker"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: collection-tracker <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  init      Create a starter config file")
		fmt.Println("  status    Show which backend currently holds data")
		fmt.Println("  migrate   Move all data to the configured backend")
		fmt.Println("  import    Import the legacy flat-file collections")
		fmt.Println("  stats     Print the collection leaderboard")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "init":
		err = runInit()
	case "status":
		err = runStatus(ctx)
	case "migrate":
		err = runMigrate(ctx)
	case "import":
		err = runImport(ctx)
	case "stats":
		err = runStats(ctx)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads the config file and installs the configured logger as the
// process default so every component picks it up.
func loadConfig() (*config.Config, error) {
	configPath := config.DefaultConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	slog.SetDefault(setupLogger(cfg.Logging))
	return cfg, nil
}

const starterConfig = `# collection-tracker configuration
backend:
  kind: embedded # embedded | networked
  embedded:
    path: %q
  networked:
    host: localhost
    port: 5432
    database: collections
    username: tracker
    password: ${TRACKER_DB_PASSWORD}
    # pool:
    #   max_size: 10
    #   min_idle: 2
    #   connection_timeout_ms: 30000
    #   idle_timeout_ms: 600000
    #   max_lifetime_ms: 1800000

logging:
  level: info
  format: text
`

func runInit() error {
	configPath := config.DefaultConfigPath()

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config already exists at %s", configPath)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	content := fmt.Sprintf(starterConfig, config.DefaultDatabasePath())
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	green := color.New(color.FgGreen)
	green.Print("✓ ")
	fmt.Printf("Created config at %s\n", configPath)
	return nil
}

func runStatus(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	opts := tracker.StoreOptions(cfg)

	green := color.New(color.FgGreen)
	gray := color.New(color.FgHiBlack)

	gray.Printf("collection-tracker %s\n\n", version)
	green.Print("▶ ")
	fmt.Printf("Configured backend: %s\n", cfg.Backend.Kind)

	detected := store.DetectCurrentBackend(ctx, opts)
	green.Print("▶ ")
	if detected == store.KindNone {
		fmt.Println("Data location:      none (no backend holds data)")
	} else {
		fmt.Printf("Data location:      %s\n", detected)
	}

	for _, kind := range []store.BackendKind{store.Embedded, store.Networked} {
		green.Print("▶ ")
		b, err := store.OpenDirect(ctx, kind, opts)
		if err != nil {
			fmt.Printf("%-10s          unreachable\n", kind+":")
			continue
		}
		count, err := b.CountCollectionRows(ctx)
		b.Close()
		if err != nil {
			fmt.Printf("%-10s          no collections table\n", kind+":")
			continue
		}
		fmt.Printf("%-10s          %d collection rows\n", kind+":", count)
	}

	if detected != store.KindNone && string(detected) != cfg.Backend.Kind {
		color.New(color.FgYellow).Println("\nData lives outside the configured backend; run `collection-tracker migrate` to move it.")
	}
	return nil
}

func runMigrate(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	migrator := store.NewMigrator(tracker.StoreOptions(cfg), nil)
	res, err := migrator.Migrate(ctx)

	switch {
	case err == nil:
		color.New(color.FgGreen).Print("✓ ")
		fmt.Println(res.Reason)
		if res.BackupPath != "" {
			fmt.Printf("  source backed up to %s\n", res.BackupPath)
		}
	case errors.Is(err, store.ErrAlreadyAtTarget):
		color.New(color.FgYellow).Print("• ")
		fmt.Println(res.Reason)
	case errors.Is(err, store.ErrNoSourceData):
		color.New(color.FgYellow).Print("• ")
		fmt.Println(res.Reason)
	case errors.Is(err, store.ErrReconnectFailed):
		color.New(color.FgYellow).Print("! ")
		fmt.Println(res.Reason)
		return err
	default:
		color.New(color.FgRed).Print("✗ ")
		fmt.Println(res.Reason)
		return err
	}
	return nil
}

func runImport(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	backend, err := store.Open(ctx, tracker.StoreOptions(cfg))
	if err != nil {
		return fmt.Errorf("opening backend: %w", err)
	}
	defer backend.Close()

	if err := backend.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}

	res, err := store.ImportLegacyFile(ctx, cfg.Legacy.ImportPath, backend)
	if err != nil {
		return err
	}
	if res == nil {
		fmt.Printf("No legacy file at %s; nothing to import.\n", cfg.Legacy.ImportPath)
		return nil
	}

	color.New(color.FgGreen).Print("✓ ")
	fmt.Printf("Imported %d users (%d items, %d entries skipped); original moved to %s\n",
		res.Users, res.Items, res.Skipped, res.BackupPath)
	return nil
}

func runStats(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	svc := tracker.New(cfg)
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer svc.Shutdown()

	entries := svc.Leaderboard()
	if len(entries) == 0 {
		fmt.Println("No collections recorded yet.")
		return nil
	}

	cyan := color.New(color.FgCyan)
	cyan.Printf("%-6s %-38s %8s %10s\n", "RANK", "USER", "ITEMS", "COMPLETE")
	for i, e := range entries {
		fmt.Printf("%-6d %-38s %5d/%-3d %9.1f%%\n",
			i+1, e.User, e.ItemsCollected, items.Count(), e.CompletionPercent)
	}
	return nil
}
