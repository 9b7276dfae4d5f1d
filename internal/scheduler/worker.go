package scheduler

import (
	"context"
	"fmt"

	"mews_bridge_backend/platform/config"
	"mews_bridge_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// SyncRunner runs one reservation-to-assignment reconciliation pass.
type SyncRunner interface {
	Run(ctx context.Context) error
}

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	sync   SyncRunner
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, syncRunner SyncRunner, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 2
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		sync:   syncRunner,
		log:    log,
	}

	mux.HandleFunc(TaskAssignmentsSync, w.handleAssignmentsSync)

	return w, nil
}

func (w *Worker) handleAssignmentsSync(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseAssignmentsSyncPayload(task)
	if err != nil {
		return err
	}

	w.log.Info("running assignments sync", "reason", payload.Reason, "dryRun", payload.DryRun)
	if err := w.sync.Run(ctx); err != nil {
		w.log.Error("assignments sync failed", "error", err, "reason", payload.Reason)
		return err
	}
	return nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
