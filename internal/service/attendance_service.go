package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/autogestion/autogestion-backend/internal/model"
	"github.com/autogestion/autogestion-backend/internal/repository"
	"github.com/rs/zerolog"
)

// ErrNotEnrolled is returned when an attendance batch names a student who
// holds no eligible enrollment in the commission.
var ErrNotEnrolled = errors.New("student is not enrolled in this commission")

// ErrNotCommission is returned when attendance is recorded for an exam sitting.
var ErrNotCommission = errors.New("attendance is only kept for commissions")

// Recorder identifies who records attendance.
type Recorder struct {
	StaffID  int
	WriteAll bool
}

// AttendanceService records and summarises class attendance.
type AttendanceService struct {
	attendanceRepo repository.AttendanceRepository
	offeringRepo   repository.OfferingRepository
	log            zerolog.Logger
}

// NewAttendanceService creates a new AttendanceService.
func NewAttendanceService(attendanceRepo repository.AttendanceRepository, offeringRepo repository.OfferingRepository, log zerolog.Logger) *AttendanceService {
	return &AttendanceService{
		attendanceRepo: attendanceRepo,
		offeringRepo:   offeringRepo,
		log:            log.With().Str("component", "attendance_service").Logger(),
	}
}

// ParseClassDate parses a YYYY-MM-DD class date.
func ParseClassDate(s string) (time.Time, error) {
	return time.Parse(time.DateOnly, s)
}

// Record stores a class's attendance. The whole batch is rejected when any
// student in it is not enrolled.
func (s *AttendanceService) Record(ctx context.Context, offeringID int, classDate time.Time, entries []model.AttendanceEntry, recorder Recorder) error {
	offering, err := s.offeringRepo.GetByID(ctx, offeringID)
	if err != nil {
		return offeringErr(err)
	}
	if offering.Kind != model.OfferingCommission {
		return ErrNotCommission
	}
	if !recorder.WriteAll && !offering.IsProfessor(recorder.StaffID) {
		return ErrForbidden
	}

	eligible, err := s.attendanceRepo.EligibleStudents(ctx, offeringID)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if !eligible[e.StudentID] {
			return fmt.Errorf("%w: student %d", ErrNotEnrolled, e.StudentID)
		}
	}

	if err := s.attendanceRepo.Upsert(ctx, offeringID, classDate, dedupeEntries(entries), recorder.StaffID); err != nil {
		return err
	}

	s.log.Info().
		Int("offering_id", offeringID).
		Str("class_date", classDate.Format(time.DateOnly)).
		Int("entries", len(entries)).
		Int("staff_id", recorder.StaffID).
		Msg("Attendance recorded")
	return nil
}

// List returns the attendance sheet of one class.
func (s *AttendanceService) List(ctx context.Context, offeringID int, classDate time.Time) ([]model.AttendanceRecord, error) {
	if _, err := s.offeringRepo.GetByID(ctx, offeringID); err != nil {
		return nil, offeringErr(err)
	}
	return s.attendanceRepo.ListByDate(ctx, offeringID, classDate)
}

// StudentSummary returns a student's attendance per commission.
func (s *AttendanceService) StudentSummary(ctx context.Context, studentID int) ([]model.AttendanceSummary, error) {
	summaries, err := s.attendanceRepo.SummaryByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	for i := range summaries {
		if summaries[i].Classes > 0 {
			summaries[i].Ratio = float64(summaries[i].Present) / float64(summaries[i].Classes)
		}
	}
	return summaries, nil
}

// dedupeEntries keeps the last entry per student. ON CONFLICT cannot touch
// the same row twice in one statement.
func dedupeEntries(entries []model.AttendanceEntry) []model.AttendanceEntry {
	idx := make(map[int]int, len(entries))
	out := make([]model.AttendanceEntry, 0, len(entries))
	for _, e := range entries {
		if i, ok := idx[e.StudentID]; ok {
			out[i] = e
			continue
		}
		idx[e.StudentID] = len(out)
		out = append(out, e)
	}
	return out
}
