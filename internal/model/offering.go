package model

import "time"

// OfferingKind distinguishes course commissions from final exam sittings.
type OfferingKind string

const (
	OfferingCommission OfferingKind = "comision"
	OfferingFinalExam  OfferingKind = "examen_final"
)

// Offering is a seat-limited commission or exam sitting students enroll in.
type Offering struct {
	ID          int          `json:"id"`
	Kind        OfferingKind `json:"kind"`
	SubjectID   int          `json:"subject_id"`
	SubjectName string       `json:"subject_name,omitempty"`
	ProfessorID *int         `json:"professor_id"`
	Label       string       `json:"label"`
	Room        string       `json:"room"`
	ScheduledAt time.Time    `json:"scheduled_at"`
	Capacity    int          `json:"capacity"`
	Occupied    int          `json:"occupied"`
	AutoConfirm bool         `json:"auto_confirm"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Remaining returns the number of free seats.
func (o *Offering) Remaining() int {
	if o.Occupied >= o.Capacity {
		return 0
	}
	return o.Capacity - o.Occupied
}

// IsOpen reports whether enrollments may still change at now.
func (o *Offering) IsOpen(now time.Time) bool {
	return now.Before(o.ScheduledAt)
}

// IsProfessor reports whether staffID teaches or supervises the offering.
func (o *Offering) IsProfessor(staffID int) bool {
	return o.ProfessorID != nil && *o.ProfessorID == staffID
}

// Availability returns the offering's current seat counts.
func (o *Offering) Availability() Availability {
	return Availability{
		OfferingID: o.ID,
		Capacity:   o.Capacity,
		Occupied:   o.Occupied,
		Remaining:  o.Remaining(),
	}
}

// Availability is the seat summary shown to clients.
type Availability struct {
	OfferingID int `json:"offering_id"`
	Capacity   int `json:"capacity"`
	Occupied   int `json:"occupied"`
	Remaining  int `json:"remaining"`
}

// OfferingWithAvailability is an offering listed on the student portal.
type OfferingWithAvailability struct {
	Offering
	Remaining int `json:"remaining"`
}

// OfferingQuery is the query string accepted by offering listings.
type OfferingQuery struct {
	Kind OfferingKind `form:"kind" json:"kind" binding:"omitempty,oneof=comision examen_final"`
}

// OfferingFilter narrows offering listings.
type OfferingFilter struct {
	Kind      OfferingKind
	SubjectID *int
	CareerID  *int
	// OpenAfter keeps only offerings scheduled after the given instant.
	OpenAfter *time.Time
}

// CreateOfferingRequest is the payload for creating an offering.
type CreateOfferingRequest struct {
	Kind        OfferingKind `json:"kind" binding:"required,oneof=comision examen_final"`
	SubjectID   int          `json:"subject_id" binding:"required,gt=0"`
	ProfessorID *int         `json:"professor_id" binding:"omitempty,gt=0"`
	Label       string       `json:"label" binding:"required,min=1,max=80"`
	Room        string       `json:"room" binding:"max=80"`
	ScheduledAt time.Time    `json:"scheduled_at" binding:"required"`
	Capacity    int          `json:"capacity" binding:"required,gt=0,lte=2000"`
	AutoConfirm bool         `json:"auto_confirm"`
}

// UpdateOfferingRequest is the payload for updating an offering.
type UpdateOfferingRequest struct {
	ProfessorID *int      `json:"professor_id" binding:"omitempty,gt=0"`
	Label       string    `json:"label" binding:"required,min=1,max=80"`
	Room        string    `json:"room" binding:"max=80"`
	ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
	Capacity    int       `json:"capacity" binding:"required,gt=0,lte=2000"`
	AutoConfirm bool      `json:"auto_confirm"`
}
