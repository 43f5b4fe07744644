package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrIntegrity indicates the catalogue definition is internally
// inconsistent. It is fatal: a broken catalogue must abort startup.
var ErrIntegrity = errors.New("catalog: integrity violation")

// Catalog is the validated, immutable role and permission registry.
// It is loaded once at startup and safe for concurrent reads.
type Catalog struct {
	roles       map[string]Role
	permissions map[string]Permission
	byRole      map[string]map[string]struct{}

	roleOrder []string
	permOrder []string
}

// Load validates the definition and builds the catalogue. Any dangling
// edge reference, duplicate edge, malformed permission identifier or
// role without a category fails with ErrIntegrity.
func Load(def Definition) (*Catalog, error) {
	c := &Catalog{
		roles:       make(map[string]Role, len(def.Roles)),
		permissions: make(map[string]Permission, len(def.Permissions)),
		byRole:      make(map[string]map[string]struct{}, len(def.Roles)),
	}

	areas := make(map[FeatureArea]struct{}, len(FeatureAreas()))
	for _, a := range FeatureAreas() {
		areas[a] = struct{}{}
	}

	for _, role := range def.Roles {
		if role.ID == "" {
			return nil, fmt.Errorf("%w: role with empty identifier", ErrIntegrity)
		}
		if role.Category != CategorySubscription && role.Category != CategoryInternal {
			return nil, fmt.Errorf("%w: role %q has invalid category %q", ErrIntegrity, role.ID, role.Category)
		}
		if _, dup := c.roles[role.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate role %q", ErrIntegrity, role.ID)
		}
		c.roles[role.ID] = role
		c.byRole[role.ID] = make(map[string]struct{})
		c.roleOrder = append(c.roleOrder, role.ID)
	}

	for _, perm := range def.Permissions {
		area, rest, ok := strings.Cut(perm.ID, ".")
		if !ok || area == "" || rest == "" {
			return nil, fmt.Errorf("%w: malformed permission identifier %q", ErrIntegrity, perm.ID)
		}
		if _, known := areas[FeatureArea(area)]; !known {
			return nil, fmt.Errorf("%w: permission %q references unknown feature area %q", ErrIntegrity, perm.ID, area)
		}
		if _, dup := c.permissions[perm.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate permission %q", ErrIntegrity, perm.ID)
		}
		c.permissions[perm.ID] = perm
		c.permOrder = append(c.permOrder, perm.ID)
	}

	for _, edge := range def.Edges {
		grants, ok := c.byRole[edge.RoleID]
		if !ok {
			return nil, fmt.Errorf("%w: edge references unknown role %q", ErrIntegrity, edge.RoleID)
		}
		if _, ok := c.permissions[edge.PermissionID]; !ok {
			return nil, fmt.Errorf("%w: edge references unknown permission %q", ErrIntegrity, edge.PermissionID)
		}
		if _, dup := grants[edge.PermissionID]; dup {
			return nil, fmt.Errorf("%w: duplicate edge (%s, %s)", ErrIntegrity, edge.RoleID, edge.PermissionID)
		}
		grants[edge.PermissionID] = struct{}{}
	}

	sort.Strings(c.roleOrder)
	sort.Strings(c.permOrder)
	return c, nil
}

// Role returns the role definition for the given identifier.
func (c *Catalog) Role(id string) (Role, bool) {
	role, ok := c.roles[id]
	return role, ok
}

// Permission returns the permission definition for the given identifier.
func (c *Catalog) Permission(id string) (Permission, bool) {
	perm, ok := c.permissions[id]
	return perm, ok
}

// RolePermissions returns the effective permission set for a role.
// Unknown roles yield an empty set: the resolver fails closed and the
// caller decides whether that warrants operator visibility.
func (c *Catalog) RolePermissions(roleID string) map[string]struct{} {
	return c.byRole[roleID]
}

// Roles lists all roles ordered by identifier.
func (c *Catalog) Roles() []Role {
	roles := make([]Role, 0, len(c.roleOrder))
	for _, id := range c.roleOrder {
		roles = append(roles, c.roles[id])
	}
	return roles
}

// Permissions lists all permissions ordered by identifier.
func (c *Catalog) Permissions() []Permission {
	perms := make([]Permission, 0, len(c.permOrder))
	for _, id := range c.permOrder {
		perms = append(perms, c.permissions[id])
	}
	return perms
}
