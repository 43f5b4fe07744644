package quota

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/diatonic-ai/workbench/internal/catalog"
	"github.com/diatonic-ai/workbench/internal/users"
)

// ConflictRecorder receives quota CAS-conflict events.
type ConflictRecorder interface {
	RecordQuotaConflict()
}

// Resolver answers tier-limit questions and tracks usage. Limit checks
// are pure; only usage mutation touches the store.
type Resolver struct {
	limits  *Limits
	store   Store
	cat     *catalog.Catalog
	logger  *slog.Logger
	metrics ConflictRecorder
}

// NewResolver constructs a Resolver. Metrics may be nil.
func NewResolver(limits *Limits, store Store, cat *catalog.Catalog, logger *slog.Logger, metrics ConflictRecorder) *Resolver {
	return &Resolver{limits: limits, store: store, cat: cat, logger: logger, metrics: metrics}
}

// Ceiling resolves the effective ceiling for the user and resource.
// Internal roles are never metered. A missing (tier, resource) row is
// unbounded for enterprise but denies everything else, including
// unrecognized tiers: trusted roles fail open, unknown tiers fail
// closed.
func (r *Resolver) Ceiling(user users.User, resource string) int64 {
	if role, ok := r.cat.Role(user.RoleID); ok && role.Category == catalog.CategoryInternal {
		return Unlimited
	}
	tier := user.SubscriptionTier
	if ceiling, ok := r.limits.Ceiling(tier, resource); ok {
		return ceiling
	}
	if tier == catalog.RoleEnterprise {
		return Unlimited
	}
	if r.logger != nil {
		if _, known := r.cat.Role(tier); !known {
			r.logger.Warn("unrecognized subscription tier, denying quota",
				slog.String("user_id", user.ID),
				slog.String("tier", tier),
				slog.String("resource", resource))
		}
	}
	return 0
}

// IsWithinLimit reports whether proposed fits under the user's
// ceiling for the resource. Pure: no storage access.
func (r *Resolver) IsWithinLimit(user users.User, resource string, proposed int64) bool {
	ceiling := r.Ceiling(user, resource)
	if ceiling == Unlimited {
		return true
	}
	return proposed <= ceiling
}

// IncrementUsage adjusts the user's counter by amount, which may be
// negative for corrections. The store performs the adjustment
// atomically; this method never reads then writes across calls.
func (r *Resolver) IncrementUsage(ctx context.Context, user users.User, resource string, amount int64) (int64, error) {
	count, err := r.store.Apply(ctx, user.ID, resource, amount)
	if err != nil {
		if errors.Is(err, ErrUpdateConflict) && r.metrics != nil {
			r.metrics.RecordQuotaConflict()
		}
		return count, err
	}
	return count, nil
}

// CurrentUsage reads the user's counter state.
func (r *Resolver) CurrentUsage(ctx context.Context, user users.User, resource string) (Usage, error) {
	return r.store.Usage(ctx, user.ID, resource)
}

// ResetUsage zeroes the counter for a billing-period rollover.
// Resetting an already-zero counter is a no-op.
func (r *Resolver) ResetUsage(ctx context.Context, user users.User, resource string) error {
	return r.store.Reset(ctx, user.ID, resource, time.Now())
}
