package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/procureflow-backend/internal/users"
	"github.com/angelmondragon/procureflow-backend/pkg/config"
	"github.com/angelmondragon/procureflow-backend/pkg/db/models"
	"github.com/angelmondragon/procureflow-backend/pkg/enums"
	"github.com/angelmondragon/procureflow-backend/pkg/security"
	"gorm.io/gorm"
)

type adminDirectory interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
}

// EnsureAdmin creates the first admin account so staff can be registered
// through the API. It reports false when the email is already taken.
func EnsureAdmin(ctx context.Context, directory adminDirectory, cfg config.PasswordConfig, email, name, password string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || strings.TrimSpace(name) == "" {
		return false, errors.New("admin email and name are required")
	}
	if len(password) < 12 {
		return false, errors.New("admin password must be at least 12 characters")
	}

	existing, err := directory.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Role != enums.RoleAdmin {
			return false, fmt.Errorf("%s exists with role %s", email, existing.Role)
		}
		return false, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return false, fmt.Errorf("lookup admin: %w", err)
	}

	hash, err := security.HashPassword(password, cfg)
	if err != nil {
		return false, fmt.Errorf("hash admin password: %w", err)
	}
	if _, err := directory.Create(ctx, users.CreateUserDTO{
		Email:        email,
		Name:         name,
		Role:         enums.RoleAdmin,
		Department:   "Administration",
		PasswordHash: hash,
	}); err != nil {
		return false, fmt.Errorf("create admin: %w", err)
	}
	return true, nil
}
