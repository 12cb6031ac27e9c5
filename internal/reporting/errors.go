package reporting

import (
	"errors"
	"strings"
)

// Error kinds raised by the reporting core. Handlers translate them to HTTP
// statuses at the boundary.
var (
	// ErrBadID means an identifier failed the uuid format check.
	ErrBadID = errors.New("invalid identifier")
	// ErrNotFound means a well-formed id matched no row.
	ErrNotFound = errors.New("record not found")
	// ErrLocked means the target report row is completed and frozen.
	ErrLocked = errors.New("record closed for editing")
	// ErrNoServices means grid generation was requested for a department
	// with an empty service list.
	ErrNoServices = errors.New("department has no services")
)

// IsDuplicate reports whether err is a unique-constraint violation from the
// underlying driver (postgres in production, sqlite in tests).
func IsDuplicate(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
