package catalog

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// RoleCategory distinguishes paying subscription tiers from staff roles.
type RoleCategory string

const (
	CategorySubscription RoleCategory = "subscription"
	CategoryInternal     RoleCategory = "internal"
)

// FeatureArea groups permissions by product surface.
type FeatureArea string

const (
	AreaEducation   FeatureArea = "education"
	AreaStudio      FeatureArea = "studio"
	AreaLab         FeatureArea = "lab"
	AreaCommunity   FeatureArea = "community"
	AreaObservatory FeatureArea = "observatory"
	AreaTeam        FeatureArea = "team"
	AreaCore        FeatureArea = "core"
	AreaAPI         FeatureArea = "api"
	AreaStorage     FeatureArea = "storage"
	AreaSupport     FeatureArea = "support"
	AreaSecurity    FeatureArea = "security"
	AreaInternal    FeatureArea = "internal"
)

// FeatureAreas lists every recognized feature area.
func FeatureAreas() []FeatureArea {
	return []FeatureArea{
		AreaEducation,
		AreaStudio,
		AreaLab,
		AreaCommunity,
		AreaObservatory,
		AreaTeam,
		AreaCore,
		AreaAPI,
		AreaStorage,
		AreaSupport,
		AreaSecurity,
		AreaInternal,
	}
}

// Role represents a named permission bucket a user is assigned to.
type Role struct {
	ID          string
	Name        string
	Category    RoleCategory
	Description string
}

// Permission represents an atomic capability identified by
// "{area}.{action}_{resource}", e.g. "studio.create_agents".
type Permission struct {
	ID          string
	Description string
}

// Area derives the feature area from the identifier prefix.
func (p Permission) Area() FeatureArea {
	area, _, ok := strings.Cut(p.ID, ".")
	if !ok {
		return ""
	}
	return FeatureArea(area)
}

// Edge ties a permission to a role.
type Edge struct {
	RoleID       string
	PermissionID string
}

// Definition is the declarative input to Load. It is built once at
// configuration time and never mutated afterwards.
type Definition struct {
	Roles       []Role
	Permissions []Permission
	Edges       []Edge
}

var titleCaser = cases.Title(language.English)

// DisplayName renders an identifier segment for UI consumption,
// e.g. "basic" -> "Basic", "run_experiments" -> "Run Experiments".
func DisplayName(id string) string {
	return titleCaser.String(strings.ReplaceAll(id, "_", " "))
}

// actionOf strips the feature-area prefix from a permission id.
func actionOf(permissionID string) string {
	_, action, ok := strings.Cut(permissionID, ".")
	if !ok {
		return permissionID
	}
	return action
}
