package auth

import (
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/procureflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/procureflow-backend/pkg/errors"
)

// Actor is the authenticated staff member invoking a workflow operation.
type Actor struct {
	UserID     uuid.UUID
	Name       string
	Role       enums.Role
	Department string
}

// HasRole reports whether the actor holds one of roles.
func (a Actor) HasRole(roles ...enums.Role) bool {
	for _, role := range roles {
		if a.Role == role {
			return true
		}
	}
	return false
}

// Require returns a FORBIDDEN error unless the actor is identified and holds
// one of the permitted roles.
func (a Actor) Require(operation string, roles ...enums.Role) error {
	if a.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity required")
	}
	if a.HasRole(roles...) {
		return nil
	}
	allowed := make([]string, 0, len(roles))
	for _, role := range roles {
		allowed = append(allowed, string(role))
	}
	return pkgerrors.Newf(pkgerrors.CodeForbidden, "role %q may not %s", a.Role, operation).
		WithDetails(map[string]any{
			"operation":     operation,
			"allowed_roles": strings.Join(allowed, ","),
		})
}
