package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	assignments "mews_bridge_backend/internal/assignments/module"
	"mews_bridge_backend/internal/availability"
	apphttp "mews_bridge_backend/internal/http"
	"mews_bridge_backend/internal/http/router"
	"mews_bridge_backend/internal/images"
	mewsclient "mews_bridge_backend/internal/mews/client"
	"mews_bridge_backend/internal/reservations"
	"mews_bridge_backend/internal/units"
	"mews_bridge_backend/migrations"
	"mews_bridge_backend/platform/config"
	"mews_bridge_backend/platform/db"
	"mews_bridge_backend/platform/logger"
	"mews_bridge_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, migrations.FS)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		var connErr error
		pool, connErr = db.NewPool(ctx, cfg)
		return connErr
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	val := validator.New()
	mews := mewsclient.New(cfg, log)
	unitsRepo := units.New(pool)

	assignmentsModule := assignments.NewModule(pool, val, log)
	availabilityModule := availability.NewModule(availability.New(mews, cfg, log))
	reservationsModule := reservations.NewModule(reservations.New(mews, unitsRepo, cfg, log))
	imagesModule := images.NewModule(cfg, log)
	unitsModule := units.NewModule(unitsRepo, val)

	app := &apphttp.App{
		Config: cfg,
		Logger: log,
		Health: db.NewPoolAdapter(pool),
		Modules: []apphttp.Module{
			assignmentsModule,
			availabilityModule,
			reservationsModule,
			imagesModule,
			unitsModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
