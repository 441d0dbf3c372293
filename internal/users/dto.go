package users

import (
	"strings"
	"time"

	"github.com/angelmondragon/procureflow-backend/pkg/db/models"
	"github.com/angelmondragon/procureflow-backend/pkg/enums"
	"github.com/google/uuid"
)

// CreateUserDTO carries the fields required to add a directory user.
type CreateUserDTO struct {
	Email        string
	Name         string
	Role         enums.Role
	Department   string
	PasswordHash string
}

// ToModel converts the DTO into a persistence model.
func (d CreateUserDTO) ToModel() *models.User {
	return &models.User{
		Email:        strings.ToLower(strings.TrimSpace(d.Email)),
		Name:         strings.TrimSpace(d.Name),
		Role:         d.Role,
		Department:   strings.TrimSpace(d.Department),
		PasswordHash: d.PasswordHash,
		IsActive:     true,
	}
}

// UserDTO is the public view of a directory user.
type UserDTO struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Role        enums.Role `json:"role"`
	Department  string     `json:"department,omitempty"`
	IsActive    bool       `json:"isActive"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// FromModel maps a user model to its DTO.
func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Role:        u.Role,
		Department:  u.Department,
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}
