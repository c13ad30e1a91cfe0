package repository

import (
	"context"
	"time"

	"github.com/autogestion/autogestion-backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DashboardRepository handles admin dashboard data access.
type DashboardRepository struct {
	pool *pgxpool.Pool
}

// NewDashboardRepository creates a new DashboardRepository.
func NewDashboardRepository(pool *pgxpool.Pool) *DashboardRepository {
	return &DashboardRepository{pool: pool}
}

// GetSummaryCounts retrieves the high-level metrics for the dashboard.
func (r *DashboardRepository) GetSummaryCounts(ctx context.Context) (totalStudents, totalCareers, totalSubjects int, err error) {
	err = r.pool.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM students),
			(SELECT COUNT(*) FROM careers),
			(SELECT COUNT(*) FROM subjects)`,
	).Scan(&totalStudents, &totalCareers, &totalSubjects)
	return
}

// GetOfferingKindCounts retrieves the number of offerings per kind.
func (r *DashboardRepository) GetOfferingKindCounts(ctx context.Context) (map[model.OfferingKind]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT kind, COUNT(*) FROM offerings GROUP BY kind`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[model.OfferingKind]int)
	for rows.Next() {
		var kind model.OfferingKind
		var count int
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, err
		}
		counts[kind] = count
	}
	return counts, rows.Err()
}

// DashboardUpcomingExam is a final exam sitting that has not taken place yet.
type DashboardUpcomingExam struct {
	ID          int       `json:"id"`
	SubjectName string    `json:"subject_name"`
	Label       string    `json:"label"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Capacity    int       `json:"capacity"`
	Occupied    int       `json:"occupied"`
	Remaining   int       `json:"remaining"`
}

// GetUpcomingExams retrieves the next N final exam sittings.
func (r *DashboardRepository) GetUpcomingExams(ctx context.Context, limit int) ([]DashboardUpcomingExam, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT o.id, s.name, o.label, o.scheduled_at, o.capacity, o.occupied
		 FROM offerings o
		 JOIN subjects s ON s.id = o.subject_id
		 WHERE o.kind = $1 AND o.scheduled_at > NOW()
		 ORDER BY o.scheduled_at ASC LIMIT $2`,
		model.OfferingFinalExam, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	exams := []DashboardUpcomingExam{}
	for rows.Next() {
		var e DashboardUpcomingExam
		if err := rows.Scan(&e.ID, &e.SubjectName, &e.Label, &e.ScheduledAt, &e.Capacity, &e.Occupied); err != nil {
			return nil, err
		}
		e.Remaining = e.Capacity - e.Occupied
		exams = append(exams, e)
	}
	return exams, rows.Err()
}
