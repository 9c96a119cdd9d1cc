// Package repository persists the booking collection, the member list and
// the special periods.  Each collection is loaded whole and saved whole:
// a save replaces every row inside one transaction, so a failed write
// leaves the previous collection untouched.
//
// The sentinel values below let higher layers such as handlers tell the
// failure scenarios apart.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a record addressed by id does not exist.
// Handlers translate it into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a write cannot be performed because of
// conflicting state, such as nights already held by another booking.
// Handlers translate it into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrDuplicate is returned when a collection being saved carries the same
// primary key twice.
var ErrDuplicate = errors.New("duplicate id")

// isDuplicateKey reports whether err is MySQL error 1062.
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
