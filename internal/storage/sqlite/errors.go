package sqlite

import (
	"errors"
	"strings"

	sqlitedrv "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mmynk/studytracker/internal/storage"
)

// classify translates constraint violations into storage sentinel errors.
// Other errors are returned unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var kind error
	var engineErr *sqlitedrv.Error
	if errors.As(err, &engineErr) {
		kind = kindForCode(engineErr.Code())
	}
	if kind == nil {
		kind = kindForMessage(err.Error())
	}
	if kind == nil {
		return err
	}

	return &storage.ConstraintError{Kind: kind, Detail: err.Error()}
}

func kindForCode(code int) error {
	switch code {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_CHECK:
		return storage.ErrConflict
	case sqlite3.SQLITE_CONSTRAINT_NOTNULL:
		return storage.ErrMissingField
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		return storage.ErrInvalidReference
	}
	return nil
}

// kindForMessage covers drivers that only report the primary result code.
func kindForMessage(msg string) error {
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"), strings.Contains(msg, "CHECK constraint failed"):
		return storage.ErrConflict
	case strings.Contains(msg, "NOT NULL constraint failed"):
		return storage.ErrMissingField
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return storage.ErrInvalidReference
	}
	return nil
}
