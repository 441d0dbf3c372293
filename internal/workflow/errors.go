// Package workflow holds the helpers the procurement state machines share:
// error mapping for guarded writes and stage conflict errors.
package workflow

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/angelmondragon/procureflow-backend/pkg/db"
	pkgerrors "github.com/angelmondragon/procureflow-backend/pkg/errors"
)

// StateConflict reports an operation attempted from a stage that does not allow it.
func StateConflict(entity, operation string, current fmt.Stringer) error {
	return pkgerrors.Newf(pkgerrors.CodeStateConflict, "%s not allowed in current state", operation).
		WithDetails(map[string]any{
			"entity":        entity,
			"current_stage": current.String(),
		})
}

// MapFindError converts a repository read failure into a typed error.
func MapFindError(err error, entity string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, entity+" not found")
	}
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load "+entity)
}

// MapWriteError converts a guarded write failure into a typed error. A lost
// compare-and-set becomes STALE_STATE_CONFLICT so callers can re-read and retry.
func MapWriteError(err error, entity string) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, db.ErrStaleWrite):
		return pkgerrors.Wrap(pkgerrors.CodeStaleState, err, entity+" was modified concurrently").
			WithDetails(map[string]any{"entity": entity})
	case errors.Is(err, gorm.ErrRecordNotFound):
		return pkgerrors.New(pkgerrors.CodeNotFound, entity+" not found")
	case db.IsUniqueViolation(err, ""):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, entity+" already exists")
	}
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write "+entity)
}

// Validation builds a VALIDATION_ERROR carrying per-field messages.
func Validation(message string, fields map[string]string) error {
	err := pkgerrors.New(pkgerrors.CodeValidation, message)
	if len(fields) > 0 {
		err = err.WithDetails(fields)
	}
	return err
}
