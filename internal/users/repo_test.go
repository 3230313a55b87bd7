package users

import (
	"context"
	"testing"
	"time"

	"github.com/angelmondragon/mallbilling/pkg/db"
	"github.com/angelmondragon/mallbilling/pkg/db/dbtest"
	"github.com/angelmondragon/mallbilling/pkg/enums"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestRepositoryCreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(dbtest.Open(t))

	created, err := repo.Create(ctx, CreateUserDTO{Username: "cashier", PasswordHash: "hash", Role: enums.RoleCashier})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, created.ID)
	require.True(t, created.IsActive)

	byName, err := repo.FindByUsername(ctx, "cashier")
	require.NoError(t, err)
	require.Equal(t, created.ID, byName.ID)

	byID, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, enums.RoleCashier, byID.Role)

	_, err = repo.FindByUsername(ctx, "nobody")
	require.True(t, db.IsNotFound(err))
}

func TestRepositoryRejectsDuplicateUsername(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(dbtest.Open(t))

	_, err := repo.Create(ctx, CreateUserDTO{Username: "admin", PasswordHash: "x", Role: enums.RoleAdmin})
	require.NoError(t, err)
	_, err = repo.Create(ctx, CreateUserDTO{Username: "admin", PasswordHash: "y", Role: enums.RoleAdmin})
	require.True(t, db.IsUniqueViolation(err, "username"))
}

func TestUpdateLastLogin(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(dbtest.Open(t))
	user, err := repo.Create(ctx, CreateUserDTO{Username: "u", PasswordHash: "x"})
	require.NoError(t, err)
	require.Equal(t, enums.RoleCashier, user.Role, "unknown role falls back to cashier")

	at := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repo.UpdateLastLogin(ctx, user.ID, at))

	reloaded, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.LastLoginAt)
	require.True(t, at.Equal(reloaded.LastLoginAt.UTC()))
}
