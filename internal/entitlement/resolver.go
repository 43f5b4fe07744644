// Package entitlement decides whether a user holds a permission.
// Resolution is a pure function over the immutable catalogue and a
// caller-supplied user record; no storage access happens here.
package entitlement

import (
	"log/slog"

	"github.com/diatonic-ai/workbench/internal/catalog"
	"github.com/diatonic-ai/workbench/internal/users"
)

// DecisionRecorder receives the outcome of every permission check.
type DecisionRecorder interface {
	RecordDecision(granted bool)
}

// Resolver evaluates permissions against the catalogue.
type Resolver struct {
	cat     *catalog.Catalog
	logger  *slog.Logger
	metrics DecisionRecorder
}

// NewResolver constructs a Resolver. Metrics may be nil.
func NewResolver(cat *catalog.Catalog, logger *slog.Logger, metrics DecisionRecorder) *Resolver {
	return &Resolver{cat: cat, logger: logger, metrics: metrics}
}

// HasPermission reports whether the user holds the permission.
// Overrides strictly dominate role grants: an explicit revoke denies a
// permission the role has, an explicit grant allows one it lacks.
// Unknown roles and unknown permission identifiers resolve to false.
func (r *Resolver) HasPermission(user users.User, permissionID string) bool {
	granted := r.decide(user, permissionID)
	if r.metrics != nil {
		r.metrics.RecordDecision(granted)
	}
	return granted
}

func (r *Resolver) decide(user users.User, permissionID string) bool {
	if _, revoked := user.RevokeOverrides()[permissionID]; revoked {
		return false
	}
	if _, grantedDirect := user.GrantOverrides()[permissionID]; grantedDirect {
		return true
	}
	_, ok := r.roleGrants(user)[permissionID]
	return ok
}

// EffectivePermissions returns the fully resolved permission set:
// (role grants ∪ grant overrides) minus revoke overrides.
func (r *Resolver) EffectivePermissions(user users.User) map[string]struct{} {
	roleGrants := r.roleGrants(user)
	grants := user.GrantOverrides()
	revokes := user.RevokeOverrides()

	effective := make(map[string]struct{}, len(roleGrants)+len(grants))
	for perm := range roleGrants {
		effective[perm] = struct{}{}
	}
	for perm := range grants {
		effective[perm] = struct{}{}
	}
	for perm := range revokes {
		delete(effective, perm)
	}
	return effective
}

// CheckPermissions is the batch form of HasPermission and agrees with
// it for every entry.
func (r *Resolver) CheckPermissions(user users.User, permissionIDs []string) map[string]bool {
	results := make(map[string]bool, len(permissionIDs))
	for _, id := range permissionIDs {
		results[id] = r.HasPermission(user, id)
	}
	return results
}

// roleGrants fails closed: a user referencing a role absent from the
// catalogue evaluates with an empty grant set. Logged rather than
// surfaced so one bad record cannot break a shared evaluation path.
func (r *Resolver) roleGrants(user users.User) map[string]struct{} {
	if _, known := r.cat.Role(user.RoleID); !known {
		if r.logger != nil {
			r.logger.Warn("unknown role, resolving with no permissions",
				slog.String("user_id", user.ID),
				slog.String("role_id", user.RoleID))
		}
		return nil
	}
	return r.cat.RolePermissions(user.RoleID)
}
