package users

import (
	"context"
	"testing"
	"time"

	"github.com/angelmondragon/procureflow-backend/pkg/db/dbtest"
	"github.com/angelmondragon/procureflow-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestRepositoryListActiveByRole(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()

	first, err := repo.Create(ctx, CreateUserDTO{Email: "Exec.One@corp.test", Name: "Exec One", Role: enums.RoleExecutive})
	require.NoError(t, err)
	second, err := repo.Create(ctx, CreateUserDTO{Email: "exec.two@corp.test", Name: "Exec Two", Role: enums.RoleExecutive})
	require.NoError(t, err)
	_, err = repo.Create(ctx, CreateUserDTO{Email: "chair@corp.test", Name: "Chair", Role: enums.RoleChairman})
	require.NoError(t, err)

	require.NoError(t, repo.Deactivate(ctx, second.ID))

	execs, err := repo.ListActiveByRole(ctx, enums.RoleExecutive)
	require.NoError(t, err)
	require.Len(t, execs, 1)
	assert.Equal(t, first.ID, execs[0].ID)
	assert.Equal(t, "exec.one@corp.test", execs[0].Email)

	none, err := repo.ListActiveByRole(ctx, enums.RoleFinance)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRepositoryCreateRejectsUnknownRole(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	_, err := repo.Create(context.Background(), CreateUserDTO{Email: "x@corp.test", Name: "X", Role: enums.RoleRequester})
	require.Error(t, err)
}

func TestRepositoryFindAndDeactivateMissing(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()

	_, err := repo.FindByID(ctx, uuid.New())
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
	require.ErrorIs(t, repo.Deactivate(ctx, uuid.New()), gorm.ErrRecordNotFound)
}

func TestRepositoryFindByEmailAndLastLogin(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, CreateUserDTO{Email: "Fin@Corp.test", Name: "Fin", Role: enums.RoleFinance, PasswordHash: "hash"})
	require.NoError(t, err)

	found, err := repo.FindByEmail(ctx, "fin@corp.test")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, "hash", found.PasswordHash)
	assert.Nil(t, found.LastLoginAt)

	at := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repo.UpdateLastLogin(ctx, created.ID, at))
	found, err = repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, found.LastLoginAt)
	assert.True(t, found.LastLoginAt.Equal(at))

	dto := FromModel(found)
	assert.Equal(t, enums.RoleFinance, dto.Role)
	assert.True(t, dto.IsActive)
}

func TestRepositoryListFiltersByRole(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()

	_, err := repo.Create(ctx, CreateUserDTO{Email: "a@corp.test", Name: "A", Role: enums.RoleWarehouse})
	require.NoError(t, err)
	_, err = repo.Create(ctx, CreateUserDTO{Email: "b@corp.test", Name: "B", Role: enums.RoleLogistics})
	require.NoError(t, err)

	all, err := repo.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	warehouse, err := repo.List(ctx, enums.RoleWarehouse)
	require.NoError(t, err)
	require.Len(t, warehouse, 1)
	assert.Equal(t, "a@corp.test", warehouse[0].Email)
}
