package shared

// Community permissions.
const (
	PermCommunityViewPosts     = "community.view_posts"
	PermCommunityCreatePosts   = "community.create_posts"
	PermCommunityModeratePosts = "community.moderate_posts"
)

// CommunityScopes lists all permissions related to the community.
func CommunityScopes() []string {
	return []string{
		PermCommunityViewPosts,
		PermCommunityCreatePosts,
		PermCommunityModeratePosts,
	}
}
