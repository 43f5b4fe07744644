package quota

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/diatonic-ai/workbench/internal/catalog"
	"github.com/diatonic-ai/workbench/internal/users"
)

func newTestResolver(t *testing.T, store Store) *Resolver {
	t.Helper()
	cat, err := catalog.Load(catalog.Default())
	require.NoError(t, err)
	limits, err := NewLimits(DefaultLimits())
	require.NoError(t, err)
	return NewResolver(limits, store, cat, slog.Default(), nil)
}

func basicUser() users.User {
	return users.User{ID: "u3", RoleID: catalog.RoleBasic, SubscriptionTier: catalog.RoleBasic}
}

func TestIsWithinLimitAtBoundary(t *testing.T) {
	r := newTestResolver(t, NewMemoryStore())
	u := basicUser()

	// basic agents_created ceiling is 25.
	require.True(t, r.IsWithinLimit(u, ResourceAgentsCreated, 25))
	require.False(t, r.IsWithinLimit(u, ResourceAgentsCreated, 26))
}

func TestInternalRolesAreUnmetered(t *testing.T) {
	r := newTestResolver(t, NewMemoryStore())
	dev := users.User{ID: "dev", RoleID: catalog.RoleDeveloper}

	require.Equal(t, Unlimited, r.Ceiling(dev, ResourceAgentsCreated))
	require.True(t, r.IsWithinLimit(dev, ResourceAgentsCreated, 1_000_000))
	require.True(t, r.IsWithinLimit(dev, "resource_nobody_configured", 1))
}

func TestEnterpriseMissingRowFailsOpen(t *testing.T) {
	r := newTestResolver(t, NewMemoryStore())
	ent := users.User{ID: "ent", RoleID: catalog.RoleEnterprise, SubscriptionTier: catalog.RoleEnterprise}

	require.True(t, r.IsWithinLimit(ent, "resource_nobody_configured", 99))
}

func TestUnknownTierFailsClosed(t *testing.T) {
	r := newTestResolver(t, NewMemoryStore())
	u := users.User{ID: "u", RoleID: "legacy_gold", SubscriptionTier: "legacy_gold"}

	require.Equal(t, int64(0), r.Ceiling(u, ResourceAgentsCreated))
	require.False(t, r.IsWithinLimit(u, ResourceAgentsCreated, 1))
}

func TestKnownTierUnknownResourceFailsClosed(t *testing.T) {
	r := newTestResolver(t, NewMemoryStore())

	require.False(t, r.IsWithinLimit(basicUser(), "resource_nobody_configured", 1))
}

func TestIncrementIsMonotonic(t *testing.T) {
	r := newTestResolver(t, NewMemoryStore())
	ctx := context.Background()
	u := basicUser()

	count, err := r.IncrementUsage(ctx, u, ResourceAgentsCreated, 5)
	require.NoError(t, err)
	require.Equal(t, int64(5), count)

	count, err = r.IncrementUsage(ctx, u, ResourceAgentsCreated, 3)
	require.NoError(t, err)
	require.Equal(t, int64(8), count)
}

func TestNegativeFloorRejection(t *testing.T) {
	r := newTestResolver(t, NewMemoryStore())
	ctx := context.Background()
	u := basicUser()

	_, err := r.IncrementUsage(ctx, u, ResourceAgentsCreated, 10)
	require.NoError(t, err)

	count, err := r.IncrementUsage(ctx, u, ResourceAgentsCreated, -100)
	require.ErrorIs(t, err, ErrNegativeQuota)
	require.Equal(t, int64(10), count)

	usage, err := r.CurrentUsage(ctx, u, ResourceAgentsCreated)
	require.NoError(t, err)
	require.Equal(t, int64(10), usage.Count)
}

func TestNegativeCorrectionWithinFloor(t *testing.T) {
	r := newTestResolver(t, NewMemoryStore())
	ctx := context.Background()
	u := basicUser()

	_, err := r.IncrementUsage(ctx, u, ResourceAgentsCreated, 10)
	require.NoError(t, err)

	count, err := r.IncrementUsage(ctx, u, ResourceAgentsCreated, -4)
	require.NoError(t, err)
	require.Equal(t, int64(6), count)
}

func TestResetIsIdempotent(t *testing.T) {
	r := newTestResolver(t, NewMemoryStore())
	ctx := context.Background()
	u := basicUser()

	_, err := r.IncrementUsage(ctx, u, ResourceAgentsCreated, 7)
	require.NoError(t, err)

	require.NoError(t, r.ResetUsage(ctx, u, ResourceAgentsCreated))
	usage, err := r.CurrentUsage(ctx, u, ResourceAgentsCreated)
	require.NoError(t, err)
	require.Equal(t, int64(0), usage.Count)
	require.False(t, usage.ResetAt.IsZero())

	require.NoError(t, r.ResetUsage(ctx, u, ResourceAgentsCreated))
	usage, err = r.CurrentUsage(ctx, u, ResourceAgentsCreated)
	require.NoError(t, err)
	require.Equal(t, int64(0), usage.Count)
}

type conflictStore struct {
	MemoryStore
}

func (s *conflictStore) Apply(ctx context.Context, userID, resource string, amount int64) (int64, error) {
	return 0, ErrUpdateConflict
}

type conflictCounter struct{ conflicts int }

func (c *conflictCounter) RecordQuotaConflict() { c.conflicts++ }

func TestConflictSurfacesAndIsRecorded(t *testing.T) {
	cat, err := catalog.Load(catalog.Default())
	require.NoError(t, err)
	limits, err := NewLimits(DefaultLimits())
	require.NoError(t, err)
	rec := &conflictCounter{}
	r := NewResolver(limits, &conflictStore{}, cat, slog.Default(), rec)

	_, err = r.IncrementUsage(context.Background(), basicUser(), ResourceAgentsCreated, 1)
	require.ErrorIs(t, err, ErrUpdateConflict)
	require.Equal(t, 1, rec.conflicts)
}

func TestNewLimitsValidation(t *testing.T) {
	_, err := NewLimits([]Limit{{Tier: "basic", Resource: "agents_created", Ceiling: -5}})
	require.ErrorIs(t, err, ErrLimitsIntegrity)

	_, err = NewLimits([]Limit{
		{Tier: "basic", Resource: "agents_created", Ceiling: 25},
		{Tier: "basic", Resource: "agents_created", Ceiling: 30},
	})
	require.ErrorIs(t, err, ErrLimitsIntegrity)

	_, err = NewLimits([]Limit{{Tier: "", Resource: "agents_created", Ceiling: 1}})
	require.ErrorIs(t, err, ErrLimitsIntegrity)

	limits, err := NewLimits([]Limit{{Tier: "enterprise", Resource: "agents_created", Ceiling: Unlimited}})
	require.NoError(t, err)
	ceiling, ok := limits.Ceiling("enterprise", "agents_created")
	require.True(t, ok)
	require.Equal(t, Unlimited, ceiling)
}
