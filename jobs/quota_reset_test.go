package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/diatonic-ai/workbench/internal/quota"
)

type staticUserLister struct {
	ids []string
}

func (s staticUserLister) ListActiveIDs(ctx context.Context) ([]string, error) {
	return s.ids, nil
}

func TestQuotaResetSweepsAllUsers(t *testing.T) {
	ctx := context.Background()
	store := quota.NewMemoryStore()
	for _, id := range []string{"u1", "u2"} {
		_, err := store.Apply(ctx, id, quota.ResourceAgentsCreated, 9)
		require.NoError(t, err)
	}

	job := NewQuotaResetJob(staticUserLister{ids: []string{"u1", "u2"}}, store, slog.Default(), nil)

	task, err := NewQuotaResetTask(QuotaResetPayload{Resources: []string{quota.ResourceAgentsCreated}})
	require.NoError(t, err)
	require.NoError(t, job.Handle(ctx, task))

	for _, id := range []string{"u1", "u2"} {
		usage, err := store.Usage(ctx, id, quota.ResourceAgentsCreated)
		require.NoError(t, err)
		require.Equal(t, int64(0), usage.Count)
		require.False(t, usage.ResetAt.IsZero())
	}
}

func TestQuotaResetDefaultsToAllResources(t *testing.T) {
	ctx := context.Background()
	store := quota.NewMemoryStore()
	_, err := store.Apply(ctx, "u1", quota.ResourceExperimentsRun, 4)
	require.NoError(t, err)
	_, err = store.Apply(ctx, "u1", quota.ResourceAPICallsDaily, 70)
	require.NoError(t, err)

	job := NewQuotaResetJob(staticUserLister{ids: []string{"u1"}}, store, slog.Default(), nil)

	task, err := NewQuotaResetTask(QuotaResetPayload{})
	require.NoError(t, err)
	require.NoError(t, job.Handle(ctx, task))

	for _, resource := range []string{quota.ResourceExperimentsRun, quota.ResourceAPICallsDaily} {
		usage, err := store.Usage(ctx, "u1", resource)
		require.NoError(t, err)
		require.Equal(t, int64(0), usage.Count)
	}
}

func TestQuotaResetMalformedPayloadSkipsRetry(t *testing.T) {
	job := NewQuotaResetJob(staticUserLister{}, quota.NewMemoryStore(), slog.Default(), nil)

	task := asynq.NewTask(TaskQuotaResetPeriod, []byte("{not json"))
	err := job.Handle(context.Background(), task)
	require.ErrorIs(t, err, asynq.SkipRetry)
}

func TestQuotaResetPayloadRoundTrip(t *testing.T) {
	task, err := NewQuotaResetTask(QuotaResetPayload{Resources: []string{quota.ResourceStorageMB}})
	require.NoError(t, err)
	require.Equal(t, TaskQuotaResetPeriod, task.Type())

	var payload QuotaResetPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	require.Equal(t, []string{quota.ResourceStorageMB}, payload.Resources)
}
