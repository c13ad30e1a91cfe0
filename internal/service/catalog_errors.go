package service

import (
	"errors"

	"github.com/autogestion/autogestion-backend/internal/repository"
)

// Errors shared by the CRUD services.
var (
	ErrNotFound          = errors.New("record not found")
	ErrDuplicate         = errors.New("record already exists")
	ErrDependencyExists  = errors.New("record is still referenced")
	ErrInvalidReference  = errors.New("referenced record does not exist")
	ErrSystemRole        = errors.New("the administrator role cannot be modified")
	ErrLastAdministrator = errors.New("at least one administrator must remain")
)

// writeErr translates repository errors from inserts and updates.
func writeErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrDuplicate),
		errors.Is(err, repository.ErrDuplicateStudent),
		errors.Is(err, repository.ErrDuplicateEmail):
		return ErrDuplicate
	case errors.Is(err, repository.ErrForeignKey):
		return ErrInvalidReference
	}
	return err
}

// deleteErr translates repository errors from deletes.
func deleteErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrForeignKey):
		return ErrDependencyExists
	}
	return err
}

// readErr translates repository errors from lookups.
func readErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
