package quota

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client)
}

func TestRedisStoreApply(t *testing.T) {
	store := newTestRedisStore(t)
	ctx := context.Background()

	count, err := store.Apply(ctx, "u1", ResourceAgentsCreated, 5)
	require.NoError(t, err)
	require.Equal(t, int64(5), count)

	count, err = store.Apply(ctx, "u1", ResourceAgentsCreated, 3)
	require.NoError(t, err)
	require.Equal(t, int64(8), count)

	// Counters are keyed per (user, resource).
	count, err = store.Apply(ctx, "u1", ResourceExperimentsRun, 1)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	usage, err := store.Usage(ctx, "u1", ResourceAgentsCreated)
	require.NoError(t, err)
	require.Equal(t, int64(8), usage.Count)
}

func TestRedisStoreRejectsNegativeFloor(t *testing.T) {
	store := newTestRedisStore(t)
	ctx := context.Background()

	_, err := store.Apply(ctx, "u1", ResourceAgentsCreated, 10)
	require.NoError(t, err)

	count, err := store.Apply(ctx, "u1", ResourceAgentsCreated, -100)
	require.ErrorIs(t, err, ErrNegativeQuota)
	require.Equal(t, int64(10), count)

	usage, err := store.Usage(ctx, "u1", ResourceAgentsCreated)
	require.NoError(t, err)
	require.Equal(t, int64(10), usage.Count)
}

func TestRedisStoreReset(t *testing.T) {
	store := newTestRedisStore(t)
	ctx := context.Background()

	_, err := store.Apply(ctx, "u1", ResourceAgentsCreated, 12)
	require.NoError(t, err)

	before := time.Now().Add(-time.Second)
	require.NoError(t, store.Reset(ctx, "u1", ResourceAgentsCreated, time.Now()))

	usage, err := store.Usage(ctx, "u1", ResourceAgentsCreated)
	require.NoError(t, err)
	require.Equal(t, int64(0), usage.Count)
	require.True(t, usage.ResetAt.After(before))

	// Resetting an already-zero counter is a quiet no-op.
	require.NoError(t, store.Reset(ctx, "u1", ResourceAgentsCreated, time.Now()))
}

func TestRedisStoreMissingKeyReadsZero(t *testing.T) {
	store := newTestRedisStore(t)

	usage, err := store.Usage(context.Background(), "nobody", ResourceAgentsCreated)
	require.NoError(t, err)
	require.Equal(t, int64(0), usage.Count)
	require.True(t, usage.ResetAt.IsZero())
}
