package auth

import (
	"github.com/angelmondragon/procureflow-backend/internal/users"
	"github.com/angelmondragon/procureflow-backend/pkg/enums"
)

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse contains the bearer token and the authenticated user.
type LoginResponse struct {
	AccessToken string         `json:"accessToken"`
	User        *users.UserDTO `json:"user"`
}

// RegisterStaffRequest adds a staff member to the directory. A blank password
// gets a generated temporary one.
type RegisterStaffRequest struct {
	Email      string     `json:"email" validate:"required,email"`
	Name       string     `json:"name" validate:"required"`
	Role       enums.Role `json:"role" validate:"required,enum"`
	Department string     `json:"department"`
	Password   string     `json:"password" validate:"omitempty,min=8"`
}

// RegisterStaffResponse returns the new user and, when one was generated, the
// temporary password.
type RegisterStaffResponse struct {
	User              *users.UserDTO `json:"user"`
	TemporaryPassword string         `json:"temporaryPassword,omitempty"`
}
