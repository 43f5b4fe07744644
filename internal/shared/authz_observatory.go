package shared

// Observatory analytics permissions.
const (
	PermObservatoryBasicAnalytics    = "observatory.basic_analytics"
	PermObservatoryAdvancedAnalytics = "observatory.advanced_analytics"
	PermObservatoryExportReports     = "observatory.export_reports"
)

// ObservatoryScopes lists all permissions related to the observatory.
func ObservatoryScopes() []string {
	return []string{
		PermObservatoryBasicAnalytics,
		PermObservatoryAdvancedAnalytics,
		PermObservatoryExportReports,
	}
}
