package shared

// Experiment lab permissions.
const (
	PermLabRunExperiments         = "lab.run_experiments"
	PermLabRunAdvancedExperiments = "lab.run_advanced_experiments"
	PermLabUseGPUCompute          = "lab.use_gpu_compute"
	PermLabScheduleExperiments    = "lab.schedule_experiments"
)

// LabScopes lists all permissions related to the experiment lab.
func LabScopes() []string {
	return []string{
		PermLabRunExperiments,
		PermLabRunAdvancedExperiments,
		PermLabUseGPUCompute,
		PermLabScheduleExperiments,
	}
}
