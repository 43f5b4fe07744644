package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/diatonic-ai/workbench/internal/catalog"
	"github.com/diatonic-ai/workbench/internal/shared"
)

type memoryRepo struct {
	users     map[string]User
	overrides map[string][]Override
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{users: make(map[string]User), overrides: make(map[string][]Override)}
}

func (r *memoryRepo) GetUser(ctx context.Context, id string) (User, error) {
	u, ok := r.users[id]
	if !ok {
		return User{}, shared.ErrNotFound
	}
	u.Overrides = append([]Override(nil), r.overrides[id]...)
	return u, nil
}

func (r *memoryRepo) CreateUser(ctx context.Context, user User) (User, error) {
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return User{}, shared.ErrDuplicate
		}
	}
	user.IsActive = true
	r.users[user.ID] = user
	return user, nil
}

func (r *memoryRepo) UpdateRole(ctx context.Context, id, roleID, tier string) error {
	u, ok := r.users[id]
	if !ok {
		return shared.ErrNotFound
	}
	u.RoleID = roleID
	u.SubscriptionTier = tier
	r.users[id] = u
	return nil
}

func (r *memoryRepo) UpsertOverride(ctx context.Context, userID string, override Override) error {
	existing := r.overrides[userID]
	for i, o := range existing {
		if o.PermissionID == override.PermissionID {
			existing[i] = override
			return nil
		}
	}
	r.overrides[userID] = append(existing, override)
	return nil
}

func (r *memoryRepo) DeleteOverride(ctx context.Context, userID, permissionID string) error {
	existing := r.overrides[userID]
	for i, o := range existing {
		if o.PermissionID == permissionID {
			r.overrides[userID] = append(existing[:i], existing[i+1:]...)
			return nil
		}
	}
	return shared.ErrNotFound
}

func (r *memoryRepo) ClearOverrides(ctx context.Context, userID string) error {
	delete(r.overrides, userID)
	return nil
}

func (r *memoryRepo) Deactivate(ctx context.Context, id string) error {
	u, ok := r.users[id]
	if !ok {
		return shared.ErrNotFound
	}
	u.IsActive = false
	r.users[id] = u
	return nil
}

func newTestService(t *testing.T) (*Service, *memoryRepo) {
	t.Helper()
	cat, err := catalog.Load(catalog.Default())
	require.NoError(t, err)
	repo := newMemoryRepo()
	return NewService(repo, cat), repo
}

func TestCreateUserDerivesTierFromSubscriptionRole(t *testing.T) {
	svc, _ := newTestService(t)

	user, err := svc.CreateUser(context.Background(), "Ada@Example.com", "Ada", catalog.RoleBasic)
	require.NoError(t, err)
	require.Equal(t, "ada@example.com", user.Email)
	require.Equal(t, catalog.RoleBasic, user.RoleID)
	require.Equal(t, catalog.RoleBasic, user.SubscriptionTier)
	require.NotEmpty(t, user.ID)
}

func TestCreateUserInternalRoleHasNoTier(t *testing.T) {
	svc, _ := newTestService(t)

	user, err := svc.CreateUser(context.Background(), "dev@example.com", "Dev", catalog.RoleDeveloper)
	require.NoError(t, err)
	require.Empty(t, user.SubscriptionTier)
}

func TestCreateUserRejectsUnknownRole(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreateUser(context.Background(), "x@example.com", "X", "superuser")
	require.ErrorIs(t, err, ErrUnknownRole)
}

func TestAssignRolePreservesOverrides(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, "u@example.com", "U", catalog.RoleFree)
	require.NoError(t, err)
	require.NoError(t, svc.SetOverride(ctx, user.ID, shared.PermStudioCreateAgents, OverrideGrant))

	require.NoError(t, svc.AssignRole(ctx, user.ID, catalog.RolePro))

	got, err := svc.GetUser(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, catalog.RolePro, got.RoleID)
	require.Equal(t, catalog.RolePro, got.SubscriptionTier)
	require.Contains(t, got.GrantOverrides(), shared.PermStudioCreateAgents)
}

func TestClearOverridesIsExplicit(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, "u@example.com", "U", catalog.RoleFree)
	require.NoError(t, err)
	require.NoError(t, svc.SetOverride(ctx, user.ID, shared.PermLabRunExperiments, OverrideGrant))
	require.NoError(t, svc.SetOverride(ctx, user.ID, shared.PermCommunityViewPosts, OverrideRevoke))

	require.NoError(t, svc.ClearOverrides(ctx, user.ID))

	got, err := svc.GetUser(ctx, user.ID)
	require.NoError(t, err)
	require.Empty(t, got.Overrides)
}

func TestSetOverrideRejectsUnknownPermission(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, "u@example.com", "U", catalog.RoleFree)
	require.NoError(t, err)

	err = svc.SetOverride(ctx, user.ID, "studio.not_a_real_permission", OverrideGrant)
	require.Error(t, err)

	err = svc.SetOverride(ctx, user.ID, shared.PermStudioCreateAgents, OverrideKind("suspend"))
	require.Error(t, err)
}

func TestSetOverrideReplacesKind(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, "u@example.com", "U", catalog.RoleBasic)
	require.NoError(t, err)

	require.NoError(t, svc.SetOverride(ctx, user.ID, shared.PermStudioCreateAgents, OverrideRevoke))
	require.NoError(t, svc.SetOverride(ctx, user.ID, shared.PermStudioCreateAgents, OverrideGrant))

	got, err := svc.GetUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, got.Overrides, 1)
	require.Contains(t, got.GrantOverrides(), shared.PermStudioCreateAgents)
}
