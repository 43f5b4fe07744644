package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/diatonic-ai/workbench/internal/jobs"
	"github.com/diatonic-ai/workbench/internal/quota"
)

// UserLister enumerates accounts whose counters roll over.
type UserLister interface {
	ListActiveIDs(ctx context.Context) ([]string, error)
}

// QuotaResetJob zeroes usage counters at the start of each billing
// period. Reset is idempotent, so a retried task run is harmless.
type QuotaResetJob struct {
	users   UserLister
	store   quota.Store
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
}

// NewQuotaResetJob constructs the job.
func NewQuotaResetJob(users UserLister, store quota.Store, logger *slog.Logger, metrics *jobmetrics.Metrics) *QuotaResetJob {
	return &QuotaResetJob{users: users, store: store, logger: logger, metrics: metrics}
}

// Handle processes TaskQuotaResetPeriod tasks. Failures on individual
// counters are collected rather than aborting the sweep: one broken
// record must not block the rollover for everyone else.
func (j *QuotaResetJob) Handle(ctx context.Context, t *asynq.Task) error {
	tracker := j.metrics.Track("quota_reset")

	var payload QuotaResetPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return tracker.End(fmt.Errorf("quota reset payload: %w: %w", err, asynq.SkipRetry))
	}
	resources := payload.Resources
	if len(resources) == 0 {
		resources = []string{
			quota.ResourceAgentsCreated,
			quota.ResourceExperimentsRun,
			quota.ResourceAPICallsDaily,
			quota.ResourceStorageMB,
			quota.ResourceTeamMembers,
		}
	}

	ids, err := j.users.ListActiveIDs(ctx)
	if err != nil {
		return tracker.End(fmt.Errorf("list active users: %w", err))
	}

	now := time.Now()
	var failed int
	var firstErr error
	for _, id := range ids {
		for _, resource := range resources {
			if err := j.store.Reset(ctx, id, resource, now); err != nil {
				failed++
				if firstErr == nil {
					firstErr = err
				}
				j.logger.Warn("reset counter",
					slog.String("user_id", id),
					slog.String("resource", resource),
					slog.Any("error", err))
			}
		}
	}

	j.logger.Info("quota reset sweep complete",
		slog.Int("users", len(ids)),
		slog.Int("resources", len(resources)),
		slog.Int("failed", failed))
	if firstErr != nil {
		return tracker.End(fmt.Errorf("quota reset: %d counters failed: %w", failed, firstErr))
	}
	return tracker.End(nil)
}
