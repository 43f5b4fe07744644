package shared

// Core platform permissions.
const (
	PermCoreUsePlatform      = "core.use_platform"
	PermCoreCustomizeProfile = "core.customize_profile"
)

// CoreScopes lists all permissions related to the core platform.
func CoreScopes() []string {
	return []string{
		PermCoreUsePlatform,
		PermCoreCustomizeProfile,
	}
}
