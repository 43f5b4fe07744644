package catalog

import "github.com/diatonic-ai/workbench/internal/shared"

// Subscription tier role identifiers. Tier identifiers double as the
// subscription_tier value used by quota resolution.
const (
	RoleFree       = "free"
	RoleBasic      = "basic"
	RolePro        = "pro"
	RoleExtreme    = "extreme"
	RoleEnterprise = "enterprise"
)

// Internal staff role identifiers.
const (
	RoleDeveloper     = "developer"
	RoleManager       = "manager"
	RoleAdministrator = "administrator"
)

// SubscriptionTiers lists tier identifiers from cheapest to most
// expensive. Quota ceilings are keyed by these values.
func SubscriptionTiers() []string {
	return []string{RoleFree, RoleBasic, RolePro, RoleExtreme, RoleEnterprise}
}

// Default returns the built-in catalogue definition. Higher tiers are
// cumulative: each includes every grant of the tier below it.
func Default() Definition {
	free := []string{
		shared.PermCoreUsePlatform,
		shared.PermCoreCustomizeProfile,
		shared.PermEducationViewCourses,
		shared.PermStudioViewTemplates,
		shared.PermCommunityViewPosts,
		shared.PermObservatoryBasicAnalytics,
		shared.PermStorageBasicStorage,
		shared.PermSupportCommunitySupport,
	}
	basic := extend(free,
		shared.PermEducationEnrollCourses,
		shared.PermStudioCreateAgents,
		shared.PermLabRunExperiments,
		shared.PermCommunityCreatePosts,
		shared.PermAPIBasicAccess,
		shared.PermSupportEmailSupport,
	)
	pro := extend(basic,
		shared.PermEducationDownloadMaterials,
		shared.PermStudioExportAgents,
		shared.PermStudioUsePremiumTemplates,
		shared.PermLabRunAdvancedExperiments,
		shared.PermObservatoryAdvancedAnalytics,
		shared.PermTeamCreateTeams,
		shared.PermTeamShareResources,
		shared.PermStorageExpandedStorage,
		shared.PermAPIAdvancedAccess,
		shared.PermSupportPrioritySupport,
	)
	extreme := extend(pro,
		shared.PermStudioPublishAgents,
		shared.PermLabUseGPUCompute,
		shared.PermLabScheduleExperiments,
		shared.PermObservatoryExportReports,
		shared.PermTeamManageMembers,
		shared.PermStorageExternalConnectors,
		shared.PermAPIWebhookSubscriptions,
	)
	enterprise := extend(extreme,
		shared.PermSecuritySSOLogin,
		shared.PermSecurityAuditLogs,
		shared.PermSecurityEnforceMFA,
		shared.PermSupportDedicatedSupport,
	)
	developer := extend(enterprise,
		shared.PermEducationCreateCourses,
		shared.PermInternalDebugTools,
		shared.PermInternalViewSystemMetrics,
	)
	manager := extend(enterprise,
		shared.PermCommunityModeratePosts,
		shared.PermInternalManageUsers,
		shared.PermInternalViewSystemMetrics,
	)

	permissions := allPermissions()
	administrator := make([]string, 0, len(permissions))
	for _, p := range permissions {
		administrator = append(administrator, p.ID)
	}

	grants := []struct {
		roleID string
		perms  []string
	}{
		{RoleFree, free},
		{RoleBasic, basic},
		{RolePro, pro},
		{RoleExtreme, extreme},
		{RoleEnterprise, enterprise},
		{RoleDeveloper, developer},
		{RoleManager, manager},
		{RoleAdministrator, administrator},
	}

	var edges []Edge
	for _, g := range grants {
		for _, perm := range g.perms {
			edges = append(edges, Edge{RoleID: g.roleID, PermissionID: perm})
		}
	}

	return Definition{
		Roles: []Role{
			{ID: RoleFree, Name: DisplayName(RoleFree), Category: CategorySubscription, Description: "Free tier with read-only access to most surfaces."},
			{ID: RoleBasic, Name: DisplayName(RoleBasic), Category: CategorySubscription, Description: "Entry paid tier: agent creation and basic experiments."},
			{ID: RolePro, Name: DisplayName(RolePro), Category: CategorySubscription, Description: "Professional tier: advanced experiments, teams and exports."},
			{ID: RoleExtreme, Name: DisplayName(RoleExtreme), Category: CategorySubscription, Description: "Power tier: GPU compute, publishing and webhooks."},
			{ID: RoleEnterprise, Name: DisplayName(RoleEnterprise), Category: CategorySubscription, Description: "Enterprise tier: SSO, audit logs, dedicated support."},
			{ID: RoleDeveloper, Name: DisplayName(RoleDeveloper), Category: CategoryInternal, Description: "Platform developer with debug tooling."},
			{ID: RoleManager, Name: DisplayName(RoleManager), Category: CategoryInternal, Description: "Community and account manager."},
			{ID: RoleAdministrator, Name: DisplayName(RoleAdministrator), Category: CategoryInternal, Description: "Full platform administrator."},
		},
		Permissions: permissions,
		Edges:       edges,
	}
}

func extend(base []string, more ...string) []string {
	out := make([]string, 0, len(base)+len(more))
	out = append(out, base...)
	out = append(out, more...)
	return out
}

func allPermissions() []Permission {
	ids := make([]string, 0, 48)
	ids = append(ids, shared.CoreScopes()...)
	ids = append(ids, shared.EducationScopes()...)
	ids = append(ids, shared.StudioScopes()...)
	ids = append(ids, shared.LabScopes()...)
	ids = append(ids, shared.CommunityScopes()...)
	ids = append(ids, shared.ObservatoryScopes()...)
	ids = append(ids, shared.TeamScopes()...)
	ids = append(ids, shared.PlatformScopes()...)
	ids = append(ids, shared.InternalScopes()...)

	perms := make([]Permission, 0, len(ids))
	for _, id := range ids {
		perms = append(perms, Permission{ID: id})
	}
	return perms
}
