package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/angelmondragon/procureflow-backend/internal/users"
	pkgAuth "github.com/angelmondragon/procureflow-backend/pkg/auth"
	"github.com/angelmondragon/procureflow-backend/pkg/config"
	"github.com/angelmondragon/procureflow-backend/pkg/db"
	"github.com/angelmondragon/procureflow-backend/pkg/db/models"
	"github.com/angelmondragon/procureflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/procureflow-backend/pkg/errors"
	"github.com/angelmondragon/procureflow-backend/pkg/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const temporaryPasswordLength = 16

// StaffService manages directory accounts. Only admins may call it.
type StaffService interface {
	Register(ctx context.Context, actor pkgAuth.Actor, req RegisterStaffRequest) (*RegisterStaffResponse, error)
	Deactivate(ctx context.Context, actor pkgAuth.Actor, userID uuid.UUID) error
	List(ctx context.Context, actor pkgAuth.Actor, role enums.Role) ([]*users.UserDTO, error)
}

type staffDirectory interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, role enums.Role) ([]models.User, error)
}

// StaffServiceParams packages the dependencies for directory management.
type StaffServiceParams struct {
	Directory      staffDirectory
	PasswordConfig config.PasswordConfig
}

type staffService struct {
	directory   staffDirectory
	passwordCfg config.PasswordConfig
}

func NewStaffService(params StaffServiceParams) (StaffService, error) {
	if params.Directory == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "user directory required")
	}
	return &staffService{
		directory:   params.Directory,
		passwordCfg: params.PasswordConfig,
	}, nil
}

func (s *staffService) Register(ctx context.Context, actor pkgAuth.Actor, req RegisterStaffRequest) (*RegisterStaffResponse, error) {
	if err := actor.Require("register staff", enums.RoleAdmin); err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if !req.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role").WithDetails(map[string]string{"role": string(req.Role)})
	}

	if _, err := s.directory.FindByEmail(ctx, email); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check user email")
	}

	password := req.Password
	generated := ""
	if password == "" {
		var err error
		if generated, err = security.GenerateTempPassword(temporaryPasswordLength); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate password")
		}
		password = generated
	}
	passwordHash, err := security.HashPassword(password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user, err := s.directory.Create(ctx, users.CreateUserDTO{
		Email:        email,
		Name:         req.Name,
		Role:         req.Role,
		Department:   req.Department,
		PasswordHash: passwordHash,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}
	return &RegisterStaffResponse{User: users.FromModel(user), TemporaryPassword: generated}, nil
}

func (s *staffService) Deactivate(ctx context.Context, actor pkgAuth.Actor, userID uuid.UUID) error {
	if err := actor.Require("deactivate staff", enums.RoleAdmin); err != nil {
		return err
	}
	if userID == actor.UserID {
		return pkgerrors.New(pkgerrors.CodeValidation, "admins cannot deactivate themselves")
	}
	if err := s.directory.Deactivate(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate user")
	}
	return nil
}

func (s *staffService) List(ctx context.Context, actor pkgAuth.Actor, role enums.Role) ([]*users.UserDTO, error) {
	if err := actor.Require("list staff", enums.RoleAdmin); err != nil {
		return nil, err
	}
	if role != "" && !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}
	rows, err := s.directory.List(ctx, role)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}
	out := make([]*users.UserDTO, 0, len(rows))
	for i := range rows {
		out = append(out, users.FromModel(&rows[i]))
	}
	return out, nil
}
