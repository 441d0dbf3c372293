package db

import (
	"errors"
	"strings"
)

// ErrStaleWrite is returned when a guarded update matched the row id but not
// the expected stage, meaning another writer moved the record first.
var ErrStaleWrite = errors.New("record changed since it was read")

// IsUniqueViolation reports whether the provided error references a unique
// violation. When constraintName is provided, Postgres errors must mention it;
// SQLite never names the constraint so any UNIQUE failure matches.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") {
		return true
	}
	if constraintName != "" {
		return strings.Contains(msg, constraintName)
	}
	return strings.Contains(msg, "duplicate key value")
}
