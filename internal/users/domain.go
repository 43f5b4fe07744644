package users

import "time"

// OverrideKind distinguishes per-user grants from revocations.
type OverrideKind string

const (
	OverrideGrant  OverrideKind = "grant"
	OverrideRevoke OverrideKind = "revoke"
)

// Override is a per-user exception that dominates role-derived
// permissions.
type Override struct {
	PermissionID string
	Kind         OverrideKind
	CreatedAt    time.Time
}

// User represents a workbench account. RoleID drives permission
// resolution; SubscriptionTier drives quota resolution.
type User struct {
	ID               string
	Email            string
	Name             string
	RoleID           string
	SubscriptionTier string
	IsActive         bool
	Overrides        []Override
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// GrantOverrides returns the set of explicitly granted permission ids.
func (u User) GrantOverrides() map[string]struct{} {
	return u.overrides(OverrideGrant)
}

// RevokeOverrides returns the set of explicitly revoked permission ids.
func (u User) RevokeOverrides() map[string]struct{} {
	return u.overrides(OverrideRevoke)
}

func (u User) overrides(kind OverrideKind) map[string]struct{} {
	set := make(map[string]struct{})
	for _, o := range u.Overrides {
		if o.Kind == kind {
			set[o.PermissionID] = struct{}{}
		}
	}
	return set
}
