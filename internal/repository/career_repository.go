package repository

import (
	"context"

	"github.com/autogestion/autogestion-backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CareerRepository interface {
	GetAll(ctx context.Context) ([]*model.Career, error)
	GetByID(ctx context.Context, id int) (*model.Career, error)
	GetByCode(ctx context.Context, code string) (*model.Career, error)
	Create(ctx context.Context, career *model.Career) error
	Update(ctx context.Context, career *model.Career) error
	Delete(ctx context.Context, id int) error
}

type careerRepository struct {
	db *pgxpool.Pool
}

func NewCareerRepository(db *pgxpool.Pool) CareerRepository {
	return &careerRepository{db: db}
}

func (r *careerRepository) GetAll(ctx context.Context) ([]*model.Career, error) {
	query := `SELECT id, code, name, created_at, updated_at FROM careers ORDER BY name ASC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	careers := []*model.Career{}
	for rows.Next() {
		c := &model.Career{}
		if err := rows.Scan(&c.ID, &c.Code, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		careers = append(careers, c)
	}
	return careers, rows.Err()
}

func (r *careerRepository) GetByID(ctx context.Context, id int) (*model.Career, error) {
	query := `SELECT id, code, name, created_at, updated_at FROM careers WHERE id = $1`
	c := &model.Career{}
	err := r.db.QueryRow(ctx, query, id).Scan(&c.ID, &c.Code, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, classify(err)
	}
	return c, nil
}

func (r *careerRepository) GetByCode(ctx context.Context, code string) (*model.Career, error) {
	query := `SELECT id, code, name, created_at, updated_at FROM careers WHERE code = $1`
	c := &model.Career{}
	err := r.db.QueryRow(ctx, query, code).Scan(&c.ID, &c.Code, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, classify(err)
	}
	return c, nil
}

func (r *careerRepository) Create(ctx context.Context, career *model.Career) error {
	query := `
		INSERT INTO careers (code, name)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, career.Code, career.Name).Scan(&career.ID, &career.CreatedAt, &career.UpdatedAt)
	return classify(err)
}

func (r *careerRepository) Update(ctx context.Context, career *model.Career) error {
	query := `
		UPDATE careers
		SET code = $1, name = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $3
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, career.Code, career.Name, career.ID).Scan(&career.CreatedAt, &career.UpdatedAt)
	return classify(err)
}

func (r *careerRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM careers WHERE id = $1`, id)
	if err != nil {
		return classify(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
