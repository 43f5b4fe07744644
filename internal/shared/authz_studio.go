package shared

// Agent studio permissions.
const (
	PermStudioViewTemplates       = "studio.view_templates"
	PermStudioCreateAgents        = "studio.create_agents"
	PermStudioExportAgents        = "studio.export_agents"
	PermStudioUsePremiumTemplates = "studio.use_premium_templates"
	PermStudioPublishAgents       = "studio.publish_agents"
)

// StudioScopes lists all permissions related to the agent studio.
func StudioScopes() []string {
	return []string{
		PermStudioViewTemplates,
		PermStudioCreateAgents,
		PermStudioExportAgents,
		PermStudioUsePremiumTemplates,
		PermStudioPublishAgents,
	}
}
