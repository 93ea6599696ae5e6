package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Lixing-Zhang/graze-api/internal/config"
	"github.com/Lixing-Zhang/graze-api/internal/importer"
	"github.com/Lixing-Zhang/graze-api/internal/repository"
	"github.com/Lixing-Zhang/graze-api/pkg/logger"
)

const usage = `usage: importer <command> [flags]

commands:
  migrate                         apply embedded SQL migrations
  restaurants FILE...             upsert restaurants by slug
  items FILE...                   upsert menu items by restaurant and name
  locations -chain NAME FILE...   import locations for one chain, skipping known osm ids
  seed-config                     install default filters, quick filters, sort options and settings
  refresh-counts                  recompute restaurant item and location counts
`

var errUsage = errors.New("invalid usage")

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Database.URL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}
	store, err := repository.NewPostgresStore(ctx, cfg.Database.URL, int32(cfg.Database.MaxConns))
	if err != nil {
		log.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	if err := run(ctx, os.Args[1:], store, os.Stdout, log); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		log.Error("import failed", "error", err)
		store.Close()
		os.Exit(1)
	}
}

// migrator is implemented by stores with embedded schema migrations.
type migrator interface {
	Migrate(ctx context.Context) ([]string, error)
}

func run(ctx context.Context, args []string, store importer.Store, out io.Writer, log *slog.Logger) error {
	if len(args) == 0 {
		return errUsage
	}
	im := importer.New(store, log)
	cmd, args := args[0], args[1:]

	switch cmd {
	case "migrate":
		m, ok := store.(migrator)
		if !ok {
			return errors.New("store does not support migrations")
		}
		applied, err := m.Migrate(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "applied %d migrations\n", len(applied))
		return nil

	case "restaurants", "items":
		if len(args) == 0 {
			return errUsage
		}
		importFn := im.ImportRestaurants
		if cmd == "items" {
			importFn = im.ImportMenuItems
		}
		sum, err := importFn(ctx, args...)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s: %s\n", cmd, sum)
		return nil

	case "locations":
		fs := flag.NewFlagSet("locations", flag.ContinueOnError)
		fs.SetOutput(out)
		chain := fs.String("chain", "", "restaurant chain name, matched case-insensitively")
		if err := fs.Parse(args); err != nil {
			return errUsage
		}
		if *chain == "" || fs.NArg() == 0 {
			return errUsage
		}
		sum, err := im.ImportLocations(ctx, *chain, fs.Args()...)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "locations for %s: %s\n", *chain, sum)
		return nil

	case "seed-config":
		res, err := im.SeedConfig(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "filters=%d quick_filters=%d sort_options=%d settings_created=%t settings_version=%d\n",
			res.Filters, res.QuickFilters, res.SortOptions, res.SettingsCreated, res.SettingsVersion)
		return nil

	case "refresh-counts":
		n, err := im.RefreshCounts(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "refreshed %d restaurants\n", n)
		return nil
	}
	return errUsage
}
