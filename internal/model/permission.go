package model

// Permission represents a string code for a specific system action.
type Permission string

const (
	// PermissionStudentsRead allows viewing student lists and details.
	PermissionStudentsRead Permission = "students:read"

	// PermissionStudentsWrite allows creating and updating students.
	PermissionStudentsWrite Permission = "students:write"

	// PermissionStudentsResetSession allows resetting a student's active session.
	PermissionStudentsResetSession Permission = "students:reset_session"

	// PermissionStaffRead allows viewing staff accounts.
	PermissionStaffRead Permission = "staff:read"

	// PermissionStaffWrite allows creating, updating, and deleting staff accounts.
	PermissionStaffWrite Permission = "staff:write"

	// PermissionRolesRead allows viewing roles and permissions.
	PermissionRolesRead Permission = "roles:read"

	// PermissionRolesWrite allows creating, updating, and deleting roles.
	PermissionRolesWrite Permission = "roles:write"

	PermissionCareersRead  Permission = "careers:read"
	PermissionCareersWrite Permission = "careers:write"

	PermissionSubjectsRead  Permission = "subjects:read"
	PermissionSubjectsWrite Permission = "subjects:write"

	PermissionOfferingsRead  Permission = "offerings:read"
	PermissionOfferingsWrite Permission = "offerings:write"

	// PermissionEnrollmentsRead allows listing enrollments of any offering.
	PermissionEnrollmentsRead Permission = "enrollments:read"

	// PermissionEnrollmentsReviewOwn allows reviewing enrollments of offerings
	// where the caller is the assigned professor.
	PermissionEnrollmentsReviewOwn Permission = "enrollments:review_own"

	// PermissionEnrollmentsReviewAll allows reviewing any enrollment.
	PermissionEnrollmentsReviewAll Permission = "enrollments:review_all"

	// PermissionEnrollmentsCancelAny allows cancelling on behalf of a student.
	PermissionEnrollmentsCancelAny Permission = "enrollments:cancel_any"

	// PermissionEnrollmentsExport allows downloading enrollment sheets.
	PermissionEnrollmentsExport Permission = "enrollments:export"

	PermissionAttendanceRead     Permission = "attendance:read"
	PermissionAttendanceWriteOwn Permission = "attendance:write_own"
	PermissionAttendanceWriteAll Permission = "attendance:write_all"

	// PermissionSystemRead allows watching server and queue metrics.
	PermissionSystemRead Permission = "system:read"
)

// AllPermissions is a slice of all available permissions.
var AllPermissions = []Permission{
	PermissionStudentsRead,
	PermissionStudentsWrite,
	PermissionStudentsResetSession,
	PermissionStaffRead,
	PermissionStaffWrite,
	PermissionRolesRead,
	PermissionRolesWrite,
	PermissionCareersRead,
	PermissionCareersWrite,
	PermissionSubjectsRead,
	PermissionSubjectsWrite,
	PermissionOfferingsRead,
	PermissionOfferingsWrite,
	PermissionEnrollmentsRead,
	PermissionEnrollmentsReviewOwn,
	PermissionEnrollmentsReviewAll,
	PermissionEnrollmentsCancelAny,
	PermissionEnrollmentsExport,
	PermissionAttendanceRead,
	PermissionAttendanceWriteOwn,
	PermissionAttendanceWriteAll,
	PermissionSystemRead,
}
