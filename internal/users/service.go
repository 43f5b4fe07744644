package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/diatonic-ai/workbench/internal/catalog"
)

// ErrUnknownRole indicates a role assignment referencing a role absent
// from the catalogue. Rejected on write; reads fail closed instead.
var ErrUnknownRole = errors.New("users: unknown role")

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	GetUser(ctx context.Context, id string) (User, error)
	CreateUser(ctx context.Context, user User) (User, error)
	UpdateRole(ctx context.Context, id, roleID, tier string) error
	UpsertOverride(ctx context.Context, userID string, override Override) error
	DeleteOverride(ctx context.Context, userID, permissionID string) error
	ClearOverrides(ctx context.Context, userID string) error
	Deactivate(ctx context.Context, id string) error
}

// Service handles account provisioning and administrative mutation.
type Service struct {
	repo RepositoryPort
	cat  *catalog.Catalog
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, cat *catalog.Catalog) *Service {
	return &Service{repo: repo, cat: cat}
}

// GetUser loads a user with overrides.
func (s *Service) GetUser(ctx context.Context, id string) (User, error) {
	return s.repo.GetUser(ctx, id)
}

// CreateUser provisions an account with the given role. For
// subscription roles the tier is derived from the role identifier;
// internal roles keep an empty tier.
func (s *Service) CreateUser(ctx context.Context, email, name, roleID string) (User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return User{}, errors.New("users: email required")
	}
	tier, err := s.tierFor(roleID)
	if err != nil {
		return User{}, err
	}
	return s.repo.CreateUser(ctx, User{
		ID:               uuid.NewString(),
		Email:            email,
		Name:             strings.TrimSpace(name),
		RoleID:           roleID,
		SubscriptionTier: tier,
	})
}

// AssignRole changes the user's role. Override history deliberately
// survives role changes; ClearOverrides is the explicit way to drop it.
func (s *Service) AssignRole(ctx context.Context, userID, roleID string) error {
	tier, err := s.tierFor(roleID)
	if err != nil {
		return err
	}
	return s.repo.UpdateRole(ctx, userID, roleID, tier)
}

// SetOverride records a grant or revoke exception for a permission.
// The permission must exist in the catalogue: an override for a
// nonexistent capability is always an administrative typo.
func (s *Service) SetOverride(ctx context.Context, userID, permissionID string, kind OverrideKind) error {
	if kind != OverrideGrant && kind != OverrideRevoke {
		return fmt.Errorf("users: invalid override kind %q", kind)
	}
	if _, ok := s.cat.Permission(permissionID); !ok {
		return fmt.Errorf("users: unknown permission %q", permissionID)
	}
	return s.repo.UpsertOverride(ctx, userID, Override{PermissionID: permissionID, Kind: kind})
}

// RemoveOverride deletes a single override.
func (s *Service) RemoveOverride(ctx context.Context, userID, permissionID string) error {
	return s.repo.DeleteOverride(ctx, userID, permissionID)
}

// ClearOverrides deletes all overrides for the user.
func (s *Service) ClearOverrides(ctx context.Context, userID string) error {
	return s.repo.ClearOverrides(ctx, userID)
}

// Deactivate soft-disables the account.
func (s *Service) Deactivate(ctx context.Context, userID string) error {
	return s.repo.Deactivate(ctx, userID)
}

func (s *Service) tierFor(roleID string) (string, error) {
	role, ok := s.cat.Role(roleID)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, roleID)
	}
	if role.Category == catalog.CategorySubscription {
		return role.ID, nil
	}
	return "", nil
}
