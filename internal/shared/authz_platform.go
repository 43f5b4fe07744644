package shared

// API access permissions.
const (
	PermAPIBasicAccess          = "api.basic_access"
	PermAPIAdvancedAccess       = "api.advanced_access"
	PermAPIWebhookSubscriptions = "api.webhook_subscriptions"
)

// Storage permissions.
const (
	PermStorageBasicStorage       = "storage.basic_storage"
	PermStorageExpandedStorage    = "storage.expanded_storage"
	PermStorageExternalConnectors = "storage.external_connectors"
)

// Support entitlement permissions.
const (
	PermSupportCommunitySupport = "support.community_support"
	PermSupportEmailSupport     = "support.email_support"
	PermSupportPrioritySupport  = "support.priority_support"
	PermSupportDedicatedSupport = "support.dedicated_support"
)

// Security feature permissions.
const (
	PermSecuritySSOLogin   = "security.sso_login"
	PermSecurityAuditLogs  = "security.audit_logs"
	PermSecurityEnforceMFA = "security.enforce_mfa"
)

// PlatformScopes lists API, storage, support and security permissions.
func PlatformScopes() []string {
	return []string{
		PermAPIBasicAccess,
		PermAPIAdvancedAccess,
		PermAPIWebhookSubscriptions,
		PermStorageBasicStorage,
		PermStorageExpandedStorage,
		PermStorageExternalConnectors,
		PermSupportCommunitySupport,
		PermSupportEmailSupport,
		PermSupportPrioritySupport,
		PermSupportDedicatedSupport,
		PermSecuritySSOLogin,
		PermSecurityAuditLogs,
		PermSecurityEnforceMFA,
	}
}
