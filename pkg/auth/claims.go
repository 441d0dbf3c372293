package auth

import (
	"github.com/angelmondragon/procureflow-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID     uuid.UUID
	Name       string
	Role       enums.Role
	Department string
}

// AccessTokenClaims represents the typed JWT issued to staff clients.
type AccessTokenClaims struct {
	UserID     uuid.UUID  `json:"user_id"`
	Name       string     `json:"name,omitempty"`
	Role       enums.Role `json:"role"`
	Department string     `json:"department,omitempty"`
	jwt.RegisteredClaims
}

// Actor returns the identity the workflow services authorize against.
func (c AccessTokenClaims) Actor() Actor {
	return Actor{
		UserID:     c.UserID,
		Name:       c.Name,
		Role:       c.Role,
		Department: c.Department,
	}
}
