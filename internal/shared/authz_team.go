package shared

// Team collaboration permissions.
const (
	PermTeamCreateTeams    = "team.create_teams"
	PermTeamShareResources = "team.share_resources"
	PermTeamManageMembers  = "team.manage_members"
)

// TeamScopes lists all permissions related to team collaboration.
func TeamScopes() []string {
	return []string{
		PermTeamCreateTeams,
		PermTeamShareResources,
		PermTeamManageMembers,
	}
}
