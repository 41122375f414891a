package apiutil

import (
	"errors"

	sqlite3 "github.com/mattn/go-sqlite3"
)

// IsSQLiteConstraintViolation reports whether err is any SQLite constraint
// failure (CHECK, UNIQUE, NOT NULL, FOREIGN KEY).
func IsSQLiteConstraintViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.Code == sqlite3.ErrConstraint
}
