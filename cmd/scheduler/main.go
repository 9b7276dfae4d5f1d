package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"mews_bridge_backend/internal/assignments/repository"
	assignsync "mews_bridge_backend/internal/assignments/sync"
	mewsclient "mews_bridge_backend/internal/mews/client"
	"mews_bridge_backend/internal/scheduler"
	"mews_bridge_backend/internal/units"
	"mews_bridge_backend/platform/config"
	"mews_bridge_backend/platform/db"
	"mews_bridge_backend/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env, "interval", cfg.SyncInterval.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	opts, err := assignsync.OptionsFromConfig(cfg)
	if err != nil {
		log.Error("failed to resolve sync options", "error", err)
		panic("failed to resolve sync options: " + err.Error())
	}

	mews := mewsclient.New(cfg, log)
	reconciler := assignsync.New(mews, repository.New(pool), units.New(pool), opts, log)

	worker, err := scheduler.NewWorker(cfg, reconciler, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		panic("failed to initialize scheduler client: " + err.Error())
	}
	defer client.Close()

	ticker := scheduler.NewSyncTicker(client, cfg.SyncInterval, log)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		worker.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		ticker.Run(ctx)
	}()

	wg.Wait()
	log.Info("scheduler stopped")
}
