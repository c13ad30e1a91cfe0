package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Storage-level errors. Services translate these into domain errors.
var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicate      = errors.New("duplicate record")
	ErrForeignKey     = errors.New("referenced record missing or still in use")
	ErrCheckViolation = errors.New("check constraint violated")
	// ErrTransient marks lock timeouts, serialization failures and deadlocks.
	// The whole transaction may be retried.
	ErrTransient = errors.New("transient database conflict")
)

// PostgreSQL SQLSTATE codes this package classifies.
const (
	pgUniqueViolation      = "23505"
	pgForeignKeyViolation  = "23503"
	pgCheckViolation       = "23514"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
)

// classify maps driver errors onto the package sentinels while keeping the
// original error in the chain.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgUniqueViolation:
		return fmt.Errorf("%w: %w", ErrDuplicate, err)
	case pgForeignKeyViolation:
		return fmt.Errorf("%w: %w", ErrForeignKey, err)
	case pgCheckViolation:
		return fmt.Errorf("%w: %w", ErrCheckViolation, err)
	case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable:
		return fmt.Errorf("%w: %w", ErrTransient, err)
	}
	return err
}

// IsTransient reports whether err is worth retrying in a fresh transaction.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}

