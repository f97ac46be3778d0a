package store

import (
	"errors"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrNotFound is returned when a row does not exist for the given user.
	ErrNotFound = errors.New("not found")
	// ErrActiveSessionExists is returned when a user already has an open session.
	ErrActiveSessionExists = errors.New("an active session already exists")
	// ErrConstraint is returned for other constraint violations.
	ErrConstraint = errors.New("constraint violation")
	// ErrBusy is returned when the database stays locked past the busy timeout.
	ErrBusy = errors.New("database is busy")
)

// classify maps SQLite result codes to store sentinel errors.
// Unknown errors are returned unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return err
	}
	code := sqliteErr.Code()
	switch code {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return &wrappedError{sentinel: ErrConstraint, err: err, unique: true}
	case sqlite3.SQLITE_CONSTRAINT_CHECK, sqlite3.SQLITE_CONSTRAINT_NOTNULL, sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		return &wrappedError{sentinel: ErrConstraint, err: err}
	}
	// Extended codes carry the primary code in the low byte.
	switch code & 0xff {
	case sqlite3.SQLITE_CONSTRAINT:
		unique := strings.Contains(strings.ToLower(sqliteErr.Error()), "unique")
		return &wrappedError{sentinel: ErrConstraint, err: err, unique: unique}
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		return &wrappedError{sentinel: ErrBusy, err: err}
	}
	return err
}

func isUniqueViolation(err error) bool {
	var w *wrappedError
	return errors.As(err, &w) && w.unique
}

type wrappedError struct {
	sentinel error
	err      error
	unique   bool
}

func (e *wrappedError) Error() string {
	return e.sentinel.Error() + ": " + e.err.Error()
}

func (e *wrappedError) Is(target error) bool {
	return target == e.sentinel
}

func (e *wrappedError) Unwrap() error {
	return e.err
}
