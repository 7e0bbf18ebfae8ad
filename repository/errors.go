package repository

import (
	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// ErrOwnerNotFound is returned when a book references an email with no user row.
var ErrOwnerNotFound = errors.New("book owner does not exist")

// isForeignKeyViolation reports whether err is SQLite rejecting a foreign key.
func isForeignKeyViolation(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	return false
}
