package quota

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// applyScript adds the delta and floors at zero in one server-side
// step, so concurrent increments cannot lose updates or wrap below
// zero. Returns -1 when the application would go negative.
var applyScript = redis.NewScript(`
local cur = tonumber(redis.call('HGET', KEYS[1], 'count') or '0')
local next = cur + tonumber(ARGV[1])
if next < 0 then
  return -1
end
redis.call('HSET', KEYS[1], 'count', next)
return next
`)

// RedisStore keeps usage counters in Redis hashes. This is the
// primary production backend.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore constructs a RedisStore.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func redisKey(userID, resource string) string {
	return fmt.Sprintf("quota:%s:%s", userID, resource)
}

// Usage implements Store.
func (s *RedisStore) Usage(ctx context.Context, userID, resource string) (Usage, error) {
	vals, err := s.client.HMGet(ctx, redisKey(userID, resource), "count", "reset_at").Result()
	if err != nil {
		return Usage{}, fmt.Errorf("quota/redis: read usage: %w", err)
	}
	var usage Usage
	if raw, ok := vals[0].(string); ok {
		if _, err := fmt.Sscan(raw, &usage.Count); err != nil {
			return Usage{}, fmt.Errorf("quota/redis: parse count %q: %w", raw, err)
		}
	}
	if raw, ok := vals[1].(string); ok {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			usage.ResetAt = t
		}
	}
	return usage, nil
}

// Apply implements Store using an atomic server-side script.
func (s *RedisStore) Apply(ctx context.Context, userID, resource string, amount int64) (int64, error) {
	res, err := applyScript.Run(ctx, s.client, []string{redisKey(userID, resource)}, amount).Int64()
	if err != nil {
		return 0, fmt.Errorf("quota/redis: apply: %w", err)
	}
	if res == -1 {
		usage, err := s.Usage(ctx, userID, resource)
		if err != nil {
			return 0, err
		}
		return usage.Count, ErrNegativeQuota
	}
	return res, nil
}

// Reset implements Store.
func (s *RedisStore) Reset(ctx context.Context, userID, resource string, at time.Time) error {
	err := s.client.HSet(ctx, redisKey(userID, resource),
		"count", 0,
		"reset_at", at.UTC().Format(time.RFC3339),
	).Err()
	if err != nil {
		return fmt.Errorf("quota/redis: reset: %w", err)
	}
	return nil
}
