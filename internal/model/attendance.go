package model

import "time"

// AttendanceRecord is one student's presence on one class date.
type AttendanceRecord struct {
	OfferingID  int       `json:"offering_id"`
	StudentID   int       `json:"student_id"`
	Legajo      string    `json:"legajo,omitempty"`
	StudentName string    `json:"student_name,omitempty"`
	ClassDate   time.Time `json:"class_date"`
	Present     bool      `json:"present"`
	RecordedBy  *int      `json:"recorded_by,omitempty"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// AttendanceEntry is a single row of a bulk attendance submission.
type AttendanceEntry struct {
	StudentID int  `json:"student_id" binding:"required,gt=0"`
	Present   bool `json:"present"`
}

// RecordAttendanceRequest is the payload professors send after a class.
type RecordAttendanceRequest struct {
	ClassDate string            `json:"class_date" binding:"required,datetime=2006-01-02"`
	Entries   []AttendanceEntry `json:"entries" binding:"required,min=1,max=500,dive"`
}

// AttendanceSummary aggregates a student's attendance in one commission.
type AttendanceSummary struct {
	OfferingID    int     `json:"offering_id"`
	OfferingLabel string  `json:"offering_label"`
	SubjectName   string  `json:"subject_name"`
	Classes       int     `json:"classes"`
	Present       int     `json:"present"`
	Ratio         float64 `json:"ratio"`
}
