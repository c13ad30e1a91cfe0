package model

import "time"

// EnrollmentStatus is the lifecycle state of an enrollment.
type EnrollmentStatus string

const (
	EnrollmentPending   EnrollmentStatus = "pendiente"
	EnrollmentConfirmed EnrollmentStatus = "confirmada"
	EnrollmentApproved  EnrollmentStatus = "aprobada"
	EnrollmentRejected  EnrollmentStatus = "rechazada"
	EnrollmentAbsent    EnrollmentStatus = "ausente"
	EnrollmentFree      EnrollmentStatus = "libre"
	EnrollmentCancelled EnrollmentStatus = "cancelada"
)

// AllEnrollmentStatuses lists every status in display order.
var AllEnrollmentStatuses = []EnrollmentStatus{
	EnrollmentPending,
	EnrollmentConfirmed,
	EnrollmentApproved,
	EnrollmentRejected,
	EnrollmentAbsent,
	EnrollmentFree,
	EnrollmentCancelled,
}

// IsActive reports whether the enrollment still holds a seat.
func (s EnrollmentStatus) IsActive() bool {
	return s != EnrollmentCancelled
}

// IsTerminal reports whether no further transition is allowed.
func (s EnrollmentStatus) IsTerminal() bool {
	return s != EnrollmentPending
}

// ReviewDecisions returns the outcomes a reviewer may record for a pending
// enrollment in an offering of the given kind.
func ReviewDecisions(kind OfferingKind) []EnrollmentStatus {
	switch kind {
	case OfferingFinalExam:
		return []EnrollmentStatus{EnrollmentApproved, EnrollmentRejected, EnrollmentAbsent, EnrollmentFree}
	case OfferingCommission:
		return []EnrollmentStatus{EnrollmentConfirmed, EnrollmentRejected}
	default:
		return nil
	}
}

// IsValidDecision reports whether decision is a legal review outcome for kind.
func IsValidDecision(kind OfferingKind, decision EnrollmentStatus) bool {
	for _, d := range ReviewDecisions(kind) {
		if d == decision {
			return true
		}
	}
	return false
}

// Enrollment links a student to an offering.
type Enrollment struct {
	ID          int              `json:"id"`
	OfferingID  int              `json:"offering_id"`
	StudentID   int              `json:"student_id"`
	Status      EnrollmentStatus `json:"status"`
	ReviewedBy  *int             `json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time       `json:"reviewed_at,omitempty"`
	CancelledAt *time.Time       `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// StudentEnrollment is an enrollment as listed on the student portal.
type StudentEnrollment struct {
	Enrollment
	OfferingKind  OfferingKind `json:"offering_kind"`
	OfferingLabel string       `json:"offering_label"`
	SubjectName   string       `json:"subject_name"`
	ScheduledAt   time.Time    `json:"scheduled_at"`
}

// OfferingEnrollment is an enrollment as listed for staff, with the student.
type OfferingEnrollment struct {
	Enrollment
	Legajo      string `json:"legajo"`
	StudentName string `json:"student_name"`
}

// ReviewEnrollmentRequest is the payload for recording a review decision.
type ReviewEnrollmentRequest struct {
	Decision EnrollmentStatus `json:"decision" binding:"required,oneof=confirmada aprobada rechazada ausente libre"`
}
