// Package jobs runs background maintenance through Asynq: cache warmup
// for the inventory overview and retention cleanup for idempotency keys.
package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/bigtal/bigtal/internal/inventory"
	"github.com/bigtal/bigtal/internal/shared"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskOverviewWarmup refreshes the cached inventory overview.
	TaskOverviewWarmup = "inventory:overview_warmup"
	// TaskIdempotencyCleanup prunes expired idempotency keys.
	TaskIdempotencyCleanup = "maintenance:idempotency_cleanup"
)

// OverviewWarmupPayload carries scheduling metadata.
type OverviewWarmupPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewOverviewWarmupTask constructs an Asynq task for overview warmup.
func NewOverviewWarmupTask(at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(OverviewWarmupPayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOverviewWarmup, body, asynq.Queue(QueueDefault)), nil
}

// IdempotencyCleanupPayload sets the retention window.
type IdempotencyCleanupPayload struct {
	Retention time.Duration `json:"retention"`
}

// NewIdempotencyCleanupTask constructs an Asynq task for key cleanup.
func NewIdempotencyCleanupTask(retention time.Duration) (*asynq.Task, error) {
	body, err := json.Marshal(IdempotencyCleanupPayload{Retention: retention})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskIdempotencyCleanup, body, asynq.Queue(QueueDefault)), nil
}

// OverviewWarmupHandler recomputes the inventory overview so the next
// dashboard request is served from cache.
func OverviewWarmupHandler(svc *inventory.Service, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload OverviewWarmupPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		if _, err := svc.Overview(ctx); err != nil {
			return err
		}
		logger.Info("overview warmup complete", slog.Time("scheduled_for", payload.ScheduledFor))
		return nil
	}
}

// IdempotencyCleanupHandler deletes keys older than the retention window.
func IdempotencyCleanupHandler(store *shared.IdempotencyStore, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload IdempotencyCleanupPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		retention := payload.Retention
		if retention <= 0 {
			retention = 24 * time.Hour
		}
		if err := store.Cleanup(ctx, retention); err != nil {
			return err
		}
		logger.Info("idempotency cleanup complete", slog.Duration("retention", retention))
		return nil
	}
}
