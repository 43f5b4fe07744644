package shared

// Education hub permissions.
const (
	PermEducationViewCourses       = "education.view_courses"
	PermEducationEnrollCourses     = "education.enroll_courses"
	PermEducationDownloadMaterials = "education.download_materials"
	PermEducationCreateCourses     = "education.create_courses"
)

// EducationScopes lists all permissions related to the education hub.
func EducationScopes() []string {
	return []string{
		PermEducationViewCourses,
		PermEducationEnrollCourses,
		PermEducationDownloadMaterials,
		PermEducationCreateCourses,
	}
}
