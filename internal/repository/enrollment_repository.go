package repository

import (
	"context"

	"github.com/autogestion/autogestion-backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EnrollmentRepository serves enrollment listings. Status changes go through
// AdmissionStore.
type EnrollmentRepository struct {
	pool *pgxpool.Pool
}

// NewEnrollmentRepository creates a new EnrollmentRepository.
func NewEnrollmentRepository(pool *pgxpool.Pool) *EnrollmentRepository {
	return &EnrollmentRepository{pool: pool}
}

// ListByStudent returns every enrollment of a student, newest first.
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID int) ([]model.StudentEnrollment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT e.id, e.offering_id, e.student_id, e.status, e.reviewed_by, e.reviewed_at,
		        e.cancelled_at, e.created_at, e.updated_at,
		        o.kind, o.label, s.name, o.scheduled_at
		 FROM enrollments e
		 JOIN offerings o ON o.id = e.offering_id
		 JOIN subjects s ON s.id = o.subject_id
		 WHERE e.student_id = $1
		 ORDER BY e.created_at DESC, e.id DESC`, studentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []model.StudentEnrollment{}
	for rows.Next() {
		var e model.StudentEnrollment
		if err := rows.Scan(&e.ID, &e.OfferingID, &e.StudentID, &e.Status, &e.ReviewedBy, &e.ReviewedAt,
			&e.CancelledAt, &e.CreatedAt, &e.UpdatedAt,
			&e.OfferingKind, &e.OfferingLabel, &e.SubjectName, &e.ScheduledAt); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// ListByOffering returns the enrollments of an offering ordered by legajo.
// Cancelled enrollments are included only when withCancelled is set.
func (r *EnrollmentRepository) ListByOffering(ctx context.Context, offeringID int, withCancelled bool) ([]model.OfferingEnrollment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT e.id, e.offering_id, e.student_id, e.status, e.reviewed_by, e.reviewed_at,
		        e.cancelled_at, e.created_at, e.updated_at,
		        st.legajo, st.name
		 FROM enrollments e
		 JOIN students st ON st.id = e.student_id
		 WHERE e.offering_id = $1 AND ($2 OR e.status <> $3)
		 ORDER BY st.legajo ASC, e.id ASC`,
		offeringID, withCancelled, model.EnrollmentCancelled,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []model.OfferingEnrollment{}
	for rows.Next() {
		var e model.OfferingEnrollment
		if err := rows.Scan(&e.ID, &e.OfferingID, &e.StudentID, &e.Status, &e.ReviewedBy, &e.ReviewedAt,
			&e.CancelledAt, &e.CreatedAt, &e.UpdatedAt,
			&e.Legajo, &e.StudentName); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// CountByStatus returns the number of enrollments per status across all offerings.
func (r *EnrollmentRepository) CountByStatus(ctx context.Context) (map[model.EnrollmentStatus]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM enrollments GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[model.EnrollmentStatus]int)
	for rows.Next() {
		var status model.EnrollmentStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}
