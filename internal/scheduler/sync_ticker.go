package scheduler

import (
	"context"
	"time"

	"mews_bridge_backend/platform/logger"
)

const defaultSyncInterval = 15 * time.Minute

// SyncTicker enqueues a reservation sync pass on a fixed interval. One pass
// runs immediately at startup so a fresh deployment converges without
// waiting a full interval.
type SyncTicker struct {
	enqueuer SyncEnqueuer
	log      *logger.Logger
	interval time.Duration
}

func NewSyncTicker(enqueuer SyncEnqueuer, interval time.Duration, log *logger.Logger) *SyncTicker {
	if interval <= 0 {
		interval = defaultSyncInterval
	}
	return &SyncTicker{enqueuer: enqueuer, log: log, interval: interval}
}

func (t *SyncTicker) Run(ctx context.Context) {
	if t == nil || t.enqueuer == nil {
		return
	}

	t.enqueue(ctx, "startup")

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.enqueue(ctx, "interval")
		}
	}
}

func (t *SyncTicker) enqueue(ctx context.Context, reason string) {
	err := t.enqueuer.EnqueueAssignmentsSync(ctx, AssignmentsSyncPayload{Reason: reason})
	if err != nil {
		t.log.Warn("failed to enqueue assignments sync", "error", err, "reason", reason)
	}
}
