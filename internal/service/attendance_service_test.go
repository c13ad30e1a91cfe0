package service

import (
	"context"
	"testing"
	"time"

	"github.com/autogestion/autogestion-backend/internal/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memAttendance struct {
	eligible  map[int]bool
	written   []model.AttendanceEntry
	upserts   int
	summaries []model.AttendanceSummary
}

func (m *memAttendance) EligibleStudents(context.Context, int) (map[int]bool, error) {
	return m.eligible, nil
}

func (m *memAttendance) Upsert(_ context.Context, _ int, _ time.Time, entries []model.AttendanceEntry, _ int) error {
	m.upserts++
	m.written = entries
	return nil
}

func (m *memAttendance) ListByDate(context.Context, int, time.Time) ([]model.AttendanceRecord, error) {
	return []model.AttendanceRecord{}, nil
}

func (m *memAttendance) SummaryByStudent(context.Context, int) ([]model.AttendanceSummary, error) {
	return m.summaries, nil
}

func newAttendanceFixture() (*AttendanceService, *memAttendance) {
	prof := professorID
	offerings := newMemOfferings()
	offerings.rows[1] = model.Offering{ID: 1, Kind: model.OfferingCommission, SubjectID: 1, ProfessorID: &prof}
	offerings.rows[2] = model.Offering{ID: 2, Kind: model.OfferingFinalExam, SubjectID: 1, ProfessorID: &prof}

	att := &memAttendance{eligible: map[int]bool{100: true, 101: true}}
	return NewAttendanceService(att, offerings, zerolog.Nop()), att
}

func TestAttendanceService_Record(t *testing.T) {
	ctx := context.Background()
	date, err := ParseClassDate("2026-03-09")
	require.NoError(t, err)

	tests := []struct {
		name     string
		offering int
		entries  []model.AttendanceEntry
		recorder Recorder
		want     error
	}{
		{
			name:     "professor records",
			offering: 1,
			entries:  []model.AttendanceEntry{{StudentID: 100, Present: true}, {StudentID: 101}},
			recorder: Recorder{StaffID: professorID},
		},
		{
			name:     "write all",
			offering: 1,
			entries:  []model.AttendanceEntry{{StudentID: 100, Present: true}},
			recorder: Recorder{StaffID: otherStaff, WriteAll: true},
		},
		{
			name:     "other professor",
			offering: 1,
			entries:  []model.AttendanceEntry{{StudentID: 100}},
			recorder: Recorder{StaffID: otherStaff},
			want:     ErrForbidden,
		},
		{
			name:     "student not enrolled",
			offering: 1,
			entries:  []model.AttendanceEntry{{StudentID: 100}, {StudentID: 555}},
			recorder: Recorder{StaffID: professorID},
			want:     ErrNotEnrolled,
		},
		{
			name:     "exam sitting",
			offering: 2,
			entries:  []model.AttendanceEntry{{StudentID: 100}},
			recorder: Recorder{StaffID: professorID},
			want:     ErrNotCommission,
		},
		{
			name:     "unknown offering",
			offering: 3,
			entries:  []model.AttendanceEntry{{StudentID: 100}},
			recorder: Recorder{StaffID: professorID},
			want:     ErrOfferingNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, att := newAttendanceFixture()
			err := svc.Record(ctx, tt.offering, date, tt.entries, tt.recorder)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
				assert.Zero(t, att.upserts, "nothing is written when the batch is rejected")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 1, att.upserts)
		})
	}
}

func TestAttendanceService_RecordKeepsLastDuplicate(t *testing.T) {
	svc, att := newAttendanceFixture()
	entries := []model.AttendanceEntry{
		{StudentID: 100, Present: false},
		{StudentID: 101, Present: true},
		{StudentID: 100, Present: true},
	}

	require.NoError(t, svc.Record(context.Background(), 1, testNow, entries, Recorder{StaffID: professorID}))
	assert.Equal(t, []model.AttendanceEntry{
		{StudentID: 100, Present: true},
		{StudentID: 101, Present: true},
	}, att.written)
}

func TestAttendanceService_StudentSummaryRatio(t *testing.T) {
	svc, att := newAttendanceFixture()
	att.summaries = []model.AttendanceSummary{
		{OfferingID: 1, Classes: 8, Present: 6},
		{OfferingID: 3, Classes: 0, Present: 0},
	}

	got, err := svc.StudentSummary(context.Background(), 100)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, got[0].Ratio, 1e-9)
	assert.Zero(t, got[1].Ratio)
}

func TestParseClassDate(t *testing.T) {
	d, err := ParseClassDate("2026-04-15")
	require.NoError(t, err)
	assert.Equal(t, time.April, d.Month())

	_, err = ParseClassDate("15/04/2026")
	assert.Error(t, err)
}
