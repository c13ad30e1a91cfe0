package repository

import (
	"context"
	"time"

	"github.com/autogestion/autogestion-backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AttendanceRepository handles attendance data access.
type AttendanceRepository interface {
	// EligibleStudents returns the IDs of students holding an active,
	// non-rejected enrollment in the offering.
	EligibleStudents(ctx context.Context, offeringID int) (map[int]bool, error)
	Upsert(ctx context.Context, offeringID int, classDate time.Time, entries []model.AttendanceEntry, recordedBy int) error
	ListByDate(ctx context.Context, offeringID int, classDate time.Time) ([]model.AttendanceRecord, error)
	SummaryByStudent(ctx context.Context, studentID int) ([]model.AttendanceSummary, error)
}

type attendanceRepository struct {
	db *pgxpool.Pool
}

func NewAttendanceRepository(db *pgxpool.Pool) AttendanceRepository {
	return &attendanceRepository{db: db}
}

func (r *attendanceRepository) EligibleStudents(ctx context.Context, offeringID int) (map[int]bool, error) {
	rows, err := r.db.Query(ctx,
		`SELECT student_id FROM enrollments
		 WHERE offering_id = $1 AND status NOT IN ($2, $3)`,
		offeringID, model.EnrollmentCancelled, model.EnrollmentRejected,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[int]bool)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

func (r *attendanceRepository) Upsert(ctx context.Context, offeringID int, classDate time.Time, entries []model.AttendanceEntry, recordedBy int) error {
	if len(entries) == 0 {
		return nil
	}

	studentIDs := make([]int, len(entries))
	present := make([]bool, len(entries))
	for i, e := range entries {
		studentIDs[i] = e.StudentID
		present[i] = e.Present
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO attendance (offering_id, student_id, class_date, present, recorded_by, recorded_at)
		 SELECT $1, t.student_id, $2, t.present, $3, NOW()
		 FROM UNNEST($4::int[], $5::bool[]) AS t(student_id, present)
		 ON CONFLICT (offering_id, student_id, class_date)
		 DO UPDATE SET present = EXCLUDED.present,
		               recorded_by = EXCLUDED.recorded_by,
		               recorded_at = EXCLUDED.recorded_at`,
		offeringID, classDate, recordedBy, studentIDs, present,
	)
	return classify(err)
}

func (r *attendanceRepository) ListByDate(ctx context.Context, offeringID int, classDate time.Time) ([]model.AttendanceRecord, error) {
	rows, err := r.db.Query(ctx,
		`SELECT a.offering_id, a.student_id, st.legajo, st.name, a.class_date, a.present, a.recorded_by, a.recorded_at
		 FROM attendance a
		 JOIN students st ON st.id = a.student_id
		 WHERE a.offering_id = $1 AND a.class_date = $2
		 ORDER BY st.legajo`,
		offeringID, classDate,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []model.AttendanceRecord{}
	for rows.Next() {
		var a model.AttendanceRecord
		if err := rows.Scan(&a.OfferingID, &a.StudentID, &a.Legajo, &a.StudentName, &a.ClassDate,
			&a.Present, &a.RecordedBy, &a.RecordedAt); err != nil {
			return nil, err
		}
		records = append(records, a)
	}
	return records, rows.Err()
}

func (r *attendanceRepository) SummaryByStudent(ctx context.Context, studentID int) ([]model.AttendanceSummary, error) {
	rows, err := r.db.Query(ctx,
		`SELECT o.id, o.label, s.name,
		        COUNT(a.class_date),
		        COUNT(a.class_date) FILTER (WHERE a.present)
		 FROM attendance a
		 JOIN offerings o ON o.id = a.offering_id
		 JOIN subjects s ON s.id = o.subject_id
		 WHERE a.student_id = $1
		 GROUP BY o.id, o.label, s.name
		 ORDER BY s.name, o.label`, studentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := []model.AttendanceSummary{}
	for rows.Next() {
		var s model.AttendanceSummary
		if err := rows.Scan(&s.OfferingID, &s.OfferingLabel, &s.SubjectName, &s.Classes, &s.Present); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}
