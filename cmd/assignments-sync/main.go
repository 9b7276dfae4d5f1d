// Command assignments-sync runs a single reconciliation pass and exits.
// Useful for backfills and for verifying configuration with -dry-run before
// letting the scheduler loose.
package main

import (
	"context"
	"flag"
	"os"

	"mews_bridge_backend/internal/assignments/repository"
	assignsync "mews_bridge_backend/internal/assignments/sync"
	mewsclient "mews_bridge_backend/internal/mews/client"
	"mews_bridge_backend/internal/units"
	"mews_bridge_backend/platform/config"
	"mews_bridge_backend/platform/db"
	"mews_bridge_backend/platform/logger"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "log intended writes without touching the store")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting assignments sync", "dryRun", *dryRun)

	ctx := context.Background()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	opts, err := assignsync.OptionsFromConfig(cfg)
	if err != nil {
		log.Error("failed to resolve sync options", "error", err)
		os.Exit(1)
	}
	if *dryRun {
		opts.DryRun = true
	}

	mews := mewsclient.New(cfg, log)
	reconciler := assignsync.New(mews, repository.New(pool), units.New(pool), opts, log)

	if err := reconciler.Run(ctx); err != nil {
		log.Error("assignments sync failed", "error", err)
		os.Exit(1)
	}

	log.Info("assignments sync complete")
}
