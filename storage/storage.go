package storage

import (
	"errors"
	"strings"
)

// ErrNotFound is returned by any Get when the record does not exist.
var ErrNotFound = errors.New("storage: record not found")

// IsUniqueViolation reports whether err is a postgres unique-index
// violation. The lifecycle relies on this to translate a lost
// check-then-act race into the same conflict error the precondition
// check produces.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "23505") ||
		strings.Contains(err.Error(), "duplicate key value")
}
