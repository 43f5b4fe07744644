package shared

// Staff-only permissions.
const (
	PermInternalDebugTools        = "internal.debug_tools"
	PermInternalManageUsers       = "internal.manage_users"
	PermInternalManageBilling     = "internal.manage_billing"
	PermInternalViewSystemMetrics = "internal.view_system_metrics"
)

// InternalScopes lists staff-only permissions.
func InternalScopes() []string {
	return []string{
		PermInternalDebugTools,
		PermInternalManageUsers,
		PermInternalManageBilling,
		PermInternalViewSystemMetrics,
	}
}
