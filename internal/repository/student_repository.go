package repository

import (
	"context"
	"errors"
	"strconv"

	"github.com/autogestion/autogestion-backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrDuplicateStudent = errors.New("student with this legajo or DNI already exists")

// StudentRepository handles student data access.
type StudentRepository struct {
	pool *pgxpool.Pool
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(pool *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

const studentColumns = `id, legajo, dni, name, email, password_hash, career_id, created_at, updated_at`

func scanStudent(row pgx.Row, s *model.Student) error {
	return row.Scan(&s.ID, &s.Legajo, &s.DNI, &s.Name, &s.Email, &s.PasswordHash, &s.CareerID, &s.CreatedAt, &s.UpdatedAt)
}

// GetByID retrieves a student by ID.
func (r *StudentRepository) GetByID(ctx context.Context, id int) (*model.Student, error) {
	s := &model.Student{}
	if err := scanStudent(r.pool.QueryRow(ctx, `SELECT `+studentColumns+` FROM students WHERE id = $1`, id), s); err != nil {
		return nil, classify(err)
	}
	return s, nil
}

// GetByLegajo retrieves a student by their unique file number.
func (r *StudentRepository) GetByLegajo(ctx context.Context, legajo string) (*model.Student, error) {
	s := &model.Student{}
	if err := scanStudent(r.pool.QueryRow(ctx, `SELECT `+studentColumns+` FROM students WHERE legajo = $1`, legajo), s); err != nil {
		return nil, classify(err)
	}
	return s, nil
}

// ListPaginated retrieves students with pagination and optional career filter.
func (r *StudentRepository) ListPaginated(ctx context.Context, careerID *int, limit, offset int) ([]model.Student, int, error) {
	// 1. Get total count
	countQuery := `SELECT COUNT(*) FROM students`
	var countArgs []interface{}
	if careerID != nil {
		countQuery += ` WHERE career_id = $1`
		countArgs = append(countArgs, *careerID)
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	// 2. Get paginated data
	query := `SELECT ` + studentColumns + ` FROM students`
	var args []interface{}
	argIdx := 1

	if careerID != nil {
		query += ` WHERE career_id = $1`
		args = append(args, *careerID)
		argIdx++
	}

	query += ` ORDER BY legajo LIMIT $` + strconv.Itoa(argIdx) + ` OFFSET $` + strconv.Itoa(argIdx+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	students := []model.Student{}
	for rows.Next() {
		var s model.Student
		if err := scanStudent(rows, &s); err != nil {
			return nil, 0, err
		}
		students = append(students, s)
	}
	return students, total, rows.Err()
}

// Create inserts a new student.
func (r *StudentRepository) Create(ctx context.Context, s *model.Student) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO students (legajo, dni, name, email, password_hash, career_id)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		s.Legajo, s.DNI, s.Name, s.Email, s.PasswordHash, s.CareerID,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	return studentWriteError(err)
}

// Update modifies a student's basic info (excluding password).
func (r *StudentRepository) Update(ctx context.Context, s *model.Student) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE students SET legajo = $1, dni = $2, name = $3, email = $4, career_id = $5, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $6
		 RETURNING created_at, updated_at`,
		s.Legajo, s.DNI, s.Name, s.Email, s.CareerID, s.ID,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
	return studentWriteError(err)
}

func studentWriteError(err error) error {
	err = classify(err)
	if errors.Is(err, ErrDuplicate) {
		return ErrDuplicateStudent
	}
	return err
}

// UpdatePassword updates a student's password hash.
func (r *StudentRepository) UpdatePassword(ctx context.Context, id int, passwordHash string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE students SET password_hash = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`,
		passwordHash, id,
	)
	return err
}

// Delete removes a student by ID. Students with enrollment history are kept.
func (r *StudentRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return classify(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
