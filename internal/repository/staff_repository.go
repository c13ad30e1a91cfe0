package repository

import (
	"context"
	"errors"

	"github.com/autogestion/autogestion-backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrDuplicateEmail = errors.New("email already registered")

// StaffRepository handles professor and administrator data access.
type StaffRepository struct {
	pool *pgxpool.Pool
}

// NewStaffRepository creates a new StaffRepository.
func NewStaffRepository(pool *pgxpool.Pool) *StaffRepository {
	return &StaffRepository{pool: pool}
}

const staffSelect = `SELECT a.id, a.email, a.name, a.password_hash, a.role_id, r.name, a.created_at, a.updated_at
	FROM staff a JOIN roles r ON a.role_id = r.id`

func scanStaff(row pgx.Row, a *model.Staff) error {
	return row.Scan(&a.ID, &a.Email, &a.Name, &a.PasswordHash, &a.RoleID, &a.RoleName, &a.CreatedAt, &a.UpdatedAt)
}

// GetByID retrieves a staff member by ID.
func (r *StaffRepository) GetByID(ctx context.Context, id int) (*model.Staff, error) {
	a := &model.Staff{}
	if err := scanStaff(r.pool.QueryRow(ctx, staffSelect+` WHERE a.id = $1`, id), a); err != nil {
		return nil, classify(err)
	}
	return a, nil
}

// GetByEmail retrieves a staff member by their unique email.
func (r *StaffRepository) GetByEmail(ctx context.Context, email string) (*model.Staff, error) {
	a := &model.Staff{}
	if err := scanStaff(r.pool.QueryRow(ctx, staffSelect+` WHERE a.email = $1`, email), a); err != nil {
		return nil, classify(err)
	}
	return a, nil
}

// List retrieves a page of staff members, optionally restricted to one role.
func (r *StaffRepository) List(ctx context.Context, roleID *int, limit, offset int) ([]model.Staff, int, error) {
	var total int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM staff WHERE $1::int IS NULL OR role_id = $1`, roleID,
	).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		staffSelect+` WHERE $1::int IS NULL OR a.role_id = $1
		 ORDER BY a.name ASC LIMIT $2 OFFSET $3`,
		roleID, limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	list := []model.Staff{}
	for rows.Next() {
		var a model.Staff
		if err := scanStaff(rows, &a); err != nil {
			return nil, 0, err
		}
		list = append(list, a)
	}
	return list, total, rows.Err()
}

// Create inserts a new staff member.
func (r *StaffRepository) Create(ctx context.Context, a *model.Staff) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO staff (email, name, password_hash, role_id)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		a.Email, a.Name, a.PasswordHash, a.RoleID,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	return staffWriteError(err)
}

// Update modifies a staff member. An empty PasswordHash keeps the current one.
func (r *StaffRepository) Update(ctx context.Context, a *model.Staff) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE staff
		 SET email = $1, name = $2, role_id = $3,
		     password_hash = COALESCE(NULLIF($4, ''), password_hash),
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = $5
		 RETURNING created_at, updated_at`,
		a.Email, a.Name, a.RoleID, a.PasswordHash, a.ID,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	return staffWriteError(err)
}

// Delete removes a staff member.
func (r *StaffRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM staff WHERE id = $1`, id)
	if err != nil {
		return classify(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByRole returns how many staff members hold the role.
func (r *StaffRepository) CountByRole(ctx context.Context, roleID int) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM staff WHERE role_id = $1`, roleID).Scan(&n)
	return n, err
}

func staffWriteError(err error) error {
	err = classify(err)
	if errors.Is(err, ErrDuplicate) {
		return ErrDuplicateEmail
	}
	return err
}
