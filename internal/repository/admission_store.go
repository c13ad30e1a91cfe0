package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/autogestion/autogestion-backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AdmissionTx is the set of statements an admission decision runs inside a
// single transaction. Callers lock the offering row before touching any of
// its enrollments.
type AdmissionTx interface {
	// LockOffering reads the offering with a row lock held until commit.
	LockOffering(ctx context.Context, offeringID int) (*model.Offering, error)
	// GetEnrollment reads an enrollment without locking it.
	GetEnrollment(ctx context.Context, enrollmentID int) (*model.Enrollment, error)
	// LockEnrollment reads an enrollment with a row lock held until commit.
	LockEnrollment(ctx context.Context, enrollmentID int) (*model.Enrollment, error)
	// ActiveEnrollment returns the student's non-cancelled enrollment in the
	// offering, or ErrNotFound.
	ActiveEnrollment(ctx context.Context, offeringID, studentID int) (*model.Enrollment, error)
	InsertEnrollment(ctx context.Context, e *model.Enrollment) error
	UpdateEnrollment(ctx context.Context, e *model.Enrollment) error
	// AddOccupied shifts the offering's seat counter and returns the new value.
	AddOccupied(ctx context.Context, offeringID, delta int) (int, error)
}

// AdmissionStore runs admission transactions.
type AdmissionStore interface {
	// InTx runs fn in one transaction. A nil return commits; anything else
	// rolls back.
	InTx(ctx context.Context, fn func(ctx context.Context, tx AdmissionTx) error) error
	Availability(ctx context.Context, offeringID int) (*model.Availability, error)
}

// defaultTxTimeout bounds transactions whose context carries no deadline.
const defaultTxTimeout = 30 * time.Second

// PgAdmissionStore implements AdmissionStore on PostgreSQL row locks.
type PgAdmissionStore struct {
	pool        *pgxpool.Pool
	lockTimeout time.Duration
}

// NewPgAdmissionStore creates a PgAdmissionStore. lockTimeout caps how long a
// transaction waits for a contended row before failing with ErrTransient.
func NewPgAdmissionStore(pool *pgxpool.Pool, lockTimeout time.Duration) *PgAdmissionStore {
	return &PgAdmissionStore{pool: pool, lockTimeout: lockTimeout}
}

// InTx implements AdmissionStore.
func (s *PgAdmissionStore) InTx(ctx context.Context, fn func(ctx context.Context, tx AdmissionTx) error) (err error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultTxTimeout)
		defer cancel()
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", classify(err))
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	// set_config(..., true) scopes the timeout to this transaction like SET LOCAL.
	ms := strconv.FormatInt(s.lockTimeout.Milliseconds(), 10) + "ms"
	if _, err = tx.Exec(ctx, `SELECT set_config('lock_timeout', $1, true)`, ms); err != nil {
		return fmt.Errorf("set lock timeout: %w", classify(err))
	}

	if err = fn(ctx, &pgAdmissionTx{tx: tx}); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", classify(err))
	}
	return nil
}

// Availability implements AdmissionStore with a plain read.
func (s *PgAdmissionStore) Availability(ctx context.Context, offeringID int) (*model.Availability, error) {
	o := &model.Offering{ID: offeringID}
	err := s.pool.QueryRow(ctx,
		`SELECT capacity, occupied FROM offerings WHERE id = $1`, offeringID,
	).Scan(&o.Capacity, &o.Occupied)
	if err != nil {
		return nil, classify(err)
	}
	a := o.Availability()
	return &a, nil
}

type pgAdmissionTx struct {
	tx pgx.Tx
}

const offeringColumns = `id, kind, subject_id, professor_id, label, room, scheduled_at,
	capacity, occupied, auto_confirm, created_at, updated_at`

func scanOffering(row pgx.Row, o *model.Offering) error {
	return row.Scan(&o.ID, &o.Kind, &o.SubjectID, &o.ProfessorID, &o.Label, &o.Room, &o.ScheduledAt,
		&o.Capacity, &o.Occupied, &o.AutoConfirm, &o.CreatedAt, &o.UpdatedAt)
}

const enrollmentColumns = `id, offering_id, student_id, status, reviewed_by, reviewed_at,
	cancelled_at, created_at, updated_at`

func scanEnrollment(row pgx.Row, e *model.Enrollment) error {
	return row.Scan(&e.ID, &e.OfferingID, &e.StudentID, &e.Status, &e.ReviewedBy, &e.ReviewedAt,
		&e.CancelledAt, &e.CreatedAt, &e.UpdatedAt)
}

func (t *pgAdmissionTx) LockOffering(ctx context.Context, offeringID int) (*model.Offering, error) {
	o := &model.Offering{}
	row := t.tx.QueryRow(ctx,
		`SELECT `+offeringColumns+` FROM offerings WHERE id = $1 FOR UPDATE`, offeringID)
	if err := scanOffering(row, o); err != nil {
		return nil, classify(err)
	}
	return o, nil
}

func (t *pgAdmissionTx) GetEnrollment(ctx context.Context, enrollmentID int) (*model.Enrollment, error) {
	e := &model.Enrollment{}
	row := t.tx.QueryRow(ctx,
		`SELECT `+enrollmentColumns+` FROM enrollments WHERE id = $1`, enrollmentID)
	if err := scanEnrollment(row, e); err != nil {
		return nil, classify(err)
	}
	return e, nil
}

func (t *pgAdmissionTx) LockEnrollment(ctx context.Context, enrollmentID int) (*model.Enrollment, error) {
	e := &model.Enrollment{}
	row := t.tx.QueryRow(ctx,
		`SELECT `+enrollmentColumns+` FROM enrollments WHERE id = $1 FOR UPDATE`, enrollmentID)
	if err := scanEnrollment(row, e); err != nil {
		return nil, classify(err)
	}
	return e, nil
}

func (t *pgAdmissionTx) ActiveEnrollment(ctx context.Context, offeringID, studentID int) (*model.Enrollment, error) {
	e := &model.Enrollment{}
	row := t.tx.QueryRow(ctx,
		`SELECT `+enrollmentColumns+`
		 FROM enrollments
		 WHERE offering_id = $1 AND student_id = $2 AND status <> $3`,
		offeringID, studentID, model.EnrollmentCancelled)
	if err := scanEnrollment(row, e); err != nil {
		return nil, classify(err)
	}
	return e, nil
}

func (t *pgAdmissionTx) InsertEnrollment(ctx context.Context, e *model.Enrollment) error {
	err := t.tx.QueryRow(ctx,
		`INSERT INTO enrollments (offering_id, student_id, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $4)
		 RETURNING id`,
		e.OfferingID, e.StudentID, e.Status, e.CreatedAt,
	).Scan(&e.ID)
	if err != nil {
		return classify(err)
	}
	e.UpdatedAt = e.CreatedAt
	return nil
}

func (t *pgAdmissionTx) UpdateEnrollment(ctx context.Context, e *model.Enrollment) error {
	tag, err := t.tx.Exec(ctx,
		`UPDATE enrollments
		 SET status = $2, reviewed_by = $3, reviewed_at = $4, cancelled_at = $5, updated_at = $6
		 WHERE id = $1`,
		e.ID, e.Status, e.ReviewedBy, e.ReviewedAt, e.CancelledAt, e.UpdatedAt,
	)
	if err != nil {
		return classify(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *pgAdmissionTx) AddOccupied(ctx context.Context, offeringID, delta int) (int, error) {
	var occupied int
	err := t.tx.QueryRow(ctx,
		`UPDATE offerings SET occupied = occupied + $2, updated_at = NOW()
		 WHERE id = $1
		 RETURNING occupied`,
		offeringID, delta,
	).Scan(&occupied)
	if err != nil {
		return 0, classify(err)
	}
	return occupied, nil
}
