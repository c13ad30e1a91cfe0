package repository

import (
	"context"
	"strconv"
	"strings"

	"github.com/autogestion/autogestion-backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OfferingRepository handles offering data access outside the admission path.
type OfferingRepository interface {
	List(ctx context.Context, filter model.OfferingFilter) ([]model.Offering, error)
	GetByID(ctx context.Context, id int) (*model.Offering, error)
	Create(ctx context.Context, o *model.Offering) error
	// UpdateLocked loads the offering under a row lock, lets fn mutate it and
	// persists the result. fn sees the committed seat counter.
	UpdateLocked(ctx context.Context, id int, fn func(o *model.Offering) error) (*model.Offering, error)
	Delete(ctx context.Context, id int) error
	ListAvailabilities(ctx context.Context, ids []int) ([]model.Availability, error)
}

type offeringRepository struct {
	db *pgxpool.Pool
}

func NewOfferingRepository(db *pgxpool.Pool) OfferingRepository {
	return &offeringRepository{db: db}
}

const offeringSelect = `SELECT o.id, o.kind, o.subject_id, s.name, o.professor_id, o.label, o.room,
	o.scheduled_at, o.capacity, o.occupied, o.auto_confirm, o.created_at, o.updated_at
	FROM offerings o
	JOIN subjects s ON s.id = o.subject_id`

func scanOfferingWithSubject(row pgx.Row, o *model.Offering) error {
	return row.Scan(&o.ID, &o.Kind, &o.SubjectID, &o.SubjectName, &o.ProfessorID, &o.Label, &o.Room,
		&o.ScheduledAt, &o.Capacity, &o.Occupied, &o.AutoConfirm, &o.CreatedAt, &o.UpdatedAt)
}

func (r *offeringRepository) List(ctx context.Context, filter model.OfferingFilter) ([]model.Offering, error) {
	var (
		where []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.Kind != "" {
		where = append(where, "o.kind = "+arg(filter.Kind))
	}
	if filter.SubjectID != nil {
		where = append(where, "o.subject_id = "+arg(*filter.SubjectID))
	}
	if filter.CareerID != nil {
		where = append(where, "s.career_id = "+arg(*filter.CareerID))
	}
	if filter.OpenAfter != nil {
		where = append(where, "o.scheduled_at > "+arg(*filter.OpenAfter))
	}

	query := offeringSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY o.scheduled_at ASC, o.id ASC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	offerings := []model.Offering{}
	for rows.Next() {
		var o model.Offering
		if err := scanOfferingWithSubject(rows, &o); err != nil {
			return nil, err
		}
		offerings = append(offerings, o)
	}
	return offerings, rows.Err()
}

func (r *offeringRepository) GetByID(ctx context.Context, id int) (*model.Offering, error) {
	o := &model.Offering{}
	if err := scanOfferingWithSubject(r.db.QueryRow(ctx, offeringSelect+" WHERE o.id = $1", id), o); err != nil {
		return nil, classify(err)
	}
	return o, nil
}

func (r *offeringRepository) Create(ctx context.Context, o *model.Offering) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO offerings (kind, subject_id, professor_id, label, room, scheduled_at, capacity, auto_confirm)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, occupied, created_at, updated_at`,
		o.Kind, o.SubjectID, o.ProfessorID, o.Label, o.Room, o.ScheduledAt, o.Capacity, o.AutoConfirm,
	).Scan(&o.ID, &o.Occupied, &o.CreatedAt, &o.UpdatedAt)
	return classify(err)
}

func (r *offeringRepository) UpdateLocked(ctx context.Context, id int, fn func(o *model.Offering) error) (*model.Offering, error) {
	var updated *model.Offering
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		o := &model.Offering{}
		row := tx.QueryRow(ctx, `SELECT `+offeringColumns+` FROM offerings WHERE id = $1 FOR UPDATE`, id)
		if err := scanOffering(row, o); err != nil {
			return classify(err)
		}
		if err := fn(o); err != nil {
			return err
		}
		err := tx.QueryRow(ctx,
			`UPDATE offerings
			 SET professor_id = $2, label = $3, room = $4, scheduled_at = $5, capacity = $6,
			     auto_confirm = $7, updated_at = NOW()
			 WHERE id = $1
			 RETURNING updated_at`,
			o.ID, o.ProfessorID, o.Label, o.Room, o.ScheduledAt, o.Capacity, o.AutoConfirm,
		).Scan(&o.UpdatedAt)
		if err != nil {
			return classify(err)
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *offeringRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM offerings WHERE id = $1`, id)
	if err != nil {
		return classify(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *offeringRepository) ListAvailabilities(ctx context.Context, ids []int) ([]model.Availability, error) {
	if len(ids) == 0 {
		return []model.Availability{}, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, capacity, occupied FROM offerings WHERE id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Availability, 0, len(ids))
	for rows.Next() {
		o := model.Offering{}
		if err := rows.Scan(&o.ID, &o.Capacity, &o.Occupied); err != nil {
			return nil, err
		}
		out = append(out, o.Availability())
	}
	return out, rows.Err()
}
