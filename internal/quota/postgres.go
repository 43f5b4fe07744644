package quota

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// casAttempts bounds the optimistic-concurrency retry loop.
const casAttempts = 3

// PostgresStore keeps usage counters in the user_quotas table. Unlike
// Redis there is no atomic scripted add with a floor, so Apply runs a
// conditional-write CAS loop bounded by casAttempts.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore constructs a PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Usage implements Store.
func (s *PostgresStore) Usage(ctx context.Context, userID, resource string) (Usage, error) {
	var usage Usage
	var resetAt *time.Time
	err := s.pool.QueryRow(ctx, `SELECT usage_count, reset_at FROM user_quotas WHERE user_id=$1 AND resource=$2`,
		userID, resource).Scan(&usage.Count, &resetAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Usage{}, nil
		}
		return Usage{}, err
	}
	if resetAt != nil {
		usage.ResetAt = *resetAt
	}
	return usage, nil
}

// Apply implements Store with a compare-and-swap loop: read the
// current count, write conditionally on it being unchanged, retry on
// interference. Exhausting the budget surfaces ErrUpdateConflict.
func (s *PostgresStore) Apply(ctx context.Context, userID, resource string, amount int64) (int64, error) {
	for attempt := 0; attempt < casAttempts; attempt++ {
		var current int64
		exists := true
		err := s.pool.QueryRow(ctx, `SELECT usage_count FROM user_quotas WHERE user_id=$1 AND resource=$2`,
			userID, resource).Scan(&current)
		if err != nil {
			if !errors.Is(err, pgx.ErrNoRows) {
				return 0, err
			}
			exists = false
			current = 0
		}

		next := current + amount
		if next < 0 {
			return current, ErrNegativeQuota
		}

		if !exists {
			// Lazy row creation on first usage. A concurrent creator
			// wins the insert race; fall through and retry the CAS.
			tag, err := s.pool.Exec(ctx, `INSERT INTO user_quotas (user_id, resource, usage_count)
VALUES ($1, $2, $3) ON CONFLICT (user_id, resource) DO NOTHING`, userID, resource, next)
			if err != nil {
				return 0, err
			}
			if tag.RowsAffected() == 1 {
				return next, nil
			}
			continue
		}

		tag, err := s.pool.Exec(ctx, `UPDATE user_quotas SET usage_count=$4, updated_at=NOW()
WHERE user_id=$1 AND resource=$2 AND usage_count=$3`, userID, resource, current, next)
		if err != nil {
			return 0, err
		}
		if tag.RowsAffected() == 1 {
			return next, nil
		}
	}
	return 0, ErrUpdateConflict
}

// Reset implements Store.
func (s *PostgresStore) Reset(ctx context.Context, userID, resource string, at time.Time) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO user_quotas (user_id, resource, usage_count, reset_at)
VALUES ($1, $2, 0, $3)
ON CONFLICT (user_id, resource) DO UPDATE SET usage_count=0, reset_at=EXCLUDED.reset_at, updated_at=NOW()`,
		userID, resource, at.UTC())
	return err
}
