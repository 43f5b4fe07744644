package quota

import (
	"context"
	"time"
)

// Store persists per-user usage counters. Apply must be atomic with
// respect to concurrent callers: implementations either use a native
// atomic increment or a bounded compare-and-swap loop that surfaces
// ErrUpdateConflict when the retry budget is exhausted.
type Store interface {
	// Usage returns the counter state, zero-valued when absent.
	Usage(ctx context.Context, userID, resource string) (Usage, error)
	// Apply atomically adds amount (may be negative) and returns the
	// new count. An application that would drive the counter below
	// zero fails with ErrNegativeQuota and leaves it unchanged.
	Apply(ctx context.Context, userID, resource string, amount int64) (int64, error)
	// Reset zeroes the counter and stamps the reset time. Idempotent.
	Reset(ctx context.Context, userID, resource string, at time.Time) error
}
