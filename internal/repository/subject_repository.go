package repository

import (
	"context"

	"github.com/autogestion/autogestion-backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SubjectRepository struct {
	pool *pgxpool.Pool
}

func NewSubjectRepository(pool *pgxpool.Pool) *SubjectRepository {
	return &SubjectRepository{pool: pool}
}

func (r *SubjectRepository) Create(ctx context.Context, s *model.Subject) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO subjects (career_id, code, name, year) VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		s.CareerID, s.Code, s.Name, s.Year).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	return classify(err)
}

// List returns subjects ordered by year and name, optionally for one career.
func (r *SubjectRepository) List(ctx context.Context, careerID *int) ([]model.Subject, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, career_id, code, name, year, created_at, updated_at
		 FROM subjects
		 WHERE $1::int IS NULL OR career_id = $1
		 ORDER BY year ASC, name ASC`, careerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subjects := []model.Subject{}
	for rows.Next() {
		var s model.Subject
		if err := rows.Scan(&s.ID, &s.CareerID, &s.Code, &s.Name, &s.Year, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		subjects = append(subjects, s)
	}
	return subjects, rows.Err()
}

func (r *SubjectRepository) GetByID(ctx context.Context, id int) (*model.Subject, error) {
	s := &model.Subject{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, career_id, code, name, year, created_at, updated_at FROM subjects WHERE id = $1`, id,
	).Scan(&s.ID, &s.CareerID, &s.Code, &s.Name, &s.Year, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, classify(err)
	}
	return s, nil
}

func (r *SubjectRepository) Update(ctx context.Context, s *model.Subject) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE subjects SET career_id = $1, code = $2, name = $3, year = $4, updated_at = NOW()
		 WHERE id = $5
		 RETURNING created_at, updated_at`,
		s.CareerID, s.Code, s.Name, s.Year, s.ID).Scan(&s.CreatedAt, &s.UpdatedAt)
	return classify(err)
}

func (r *SubjectRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM subjects WHERE id = $1`, id)
	if err != nil {
		return classify(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
