// Package repository defines error types that are reused across multiple
// repositories.  These sentinel values allow higher layers such as the
// booking service to tell failure scenarios apart without inspecting
// driver errors.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when the addressed game, purchase or user row
// does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when an insert would duplicate an existing
// primary key, such as appending a purchase whose confirmation code is
// already in the ledger.
var ErrConflict = errors.New("conflict")

// mysqlDuplicateEntry is the server error number for a duplicate key.
const mysqlDuplicateEntry = 1062

// isDuplicate reports whether err is a MySQL duplicate-key violation.
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}
