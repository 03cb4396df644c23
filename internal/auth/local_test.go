package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HealthDash/HealthDash/internal/db/dbtest"
	"github.com/HealthDash/HealthDash/internal/rbac"
)

func TestLocalProvider_Authenticate(t *testing.T) {
	ctx := context.Background()
	p := NewLocalProvider(dbtest.New(t))

	createUser(t, p, "ada", rbac.RoleDevOps)

	disabled, err := p.CreateUser(ctx, NewUser{
		Username: "bob", Email: "bob@example.com", Password: "password123", Inactive: true,
	})
	require.NoError(t, err)

	stored, err := p.GetUserByID(ctx, disabled.ID)
	require.NoError(t, err)
	assert.False(t, stored.Active)

	user, err := p.Authenticate(ctx, "ada", "password123")
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleDevOps, user.Role)

	_, err = p.Authenticate(ctx, "ada", "wrong")
	require.ErrorIs(t, err, ErrInvalidPassword)

	_, err = p.Authenticate(ctx, "nobody", "password123")
	require.ErrorIs(t, err, ErrUserNotFound)

	_, err = p.Authenticate(ctx, "bob", "password123")
	require.ErrorIs(t, err, ErrUserAccountDisabled)
}

func TestLocalProvider_CreateUser(t *testing.T) {
	ctx := context.Background()
	p := NewLocalProvider(dbtest.New(t))

	user := createUser(t, p, "ada", "")
	assert.Equal(t, rbac.DefaultRole, user.Role)
	assert.True(t, user.Active)
	assert.NotEqual(t, "password123", user.Password)

	_, err := p.CreateUser(ctx, NewUser{Username: "ada", Email: "other@example.com", Password: "password123"})
	require.ErrorIs(t, err, ErrUserNameOrEmailExists)

	_, err = p.CreateUser(ctx, NewUser{Username: "other", Email: "ada@example.com", Password: "password123"})
	require.ErrorIs(t, err, ErrUserNameOrEmailExists)

	_, err = p.CreateUser(ctx, NewUser{Username: "eve", Email: "eve@example.com", Password: "x", Role: "root"})
	require.ErrorIs(t, err, ErrUnknownRole)
}

func TestLocalProvider_UpdateUser(t *testing.T) {
	ctx := context.Background()
	p := NewLocalProvider(dbtest.New(t))

	ada := createUser(t, p, "ada", rbac.RoleDev)
	createUser(t, p, "bob", rbac.RoleDev)

	role := rbac.RoleQA
	first := "Augusta"
	inactive := false

	updated, err := p.UpdateUser(ctx, ada.ID, UserChanges{Role: &role, FirstName: &first, Active: &inactive})
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleQA, updated.Role)
	assert.Equal(t, "Augusta", updated.FirstName)
	assert.Equal(t, "User", updated.LastName)
	assert.False(t, updated.Active)

	taken := "bob"
	_, err = p.UpdateUser(ctx, ada.ID, UserChanges{Username: &taken})
	require.ErrorIs(t, err, ErrUserNameOrEmailExists)

	same := "ada"
	_, err = p.UpdateUser(ctx, ada.ID, UserChanges{Username: &same})
	require.NoError(t, err)

	bad := rbac.Role("root")
	_, err = p.UpdateUser(ctx, ada.ID, UserChanges{Role: &bad})
	require.ErrorIs(t, err, ErrUnknownRole)

	_, err = p.UpdateUser(ctx, 999, UserChanges{Role: &role})
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestLocalProvider_Passwords(t *testing.T) {
	ctx := context.Background()
	p := NewLocalProvider(dbtest.New(t))

	ada := createUser(t, p, "ada", rbac.RoleDev)

	require.ErrorIs(t, p.ChangePassword(ctx, ada.ID, "wrong", "newpassword"), ErrInvalidOldPassword)
	require.NoError(t, p.ChangePassword(ctx, ada.ID, "password123", "newpassword"))

	_, err := p.Authenticate(ctx, "ada", "password123")
	require.ErrorIs(t, err, ErrInvalidPassword)

	_, err = p.Authenticate(ctx, "ada", "newpassword")
	require.NoError(t, err)

	require.ErrorIs(t, p.ChangePassword(ctx, 999, "a", "b"), ErrUserNotFound)
}

func TestLocalProvider_DeactivateUser(t *testing.T) {
	ctx := context.Background()
	p := NewLocalProvider(dbtest.New(t))

	admin := createUser(t, p, "admin", rbac.RoleManagement)
	ada := createUser(t, p, "ada", rbac.RoleDev)

	require.ErrorIs(t, p.DeactivateUser(ctx, admin.ID, admin.ID), ErrCannotDeleteSelf)
	require.ErrorIs(t, p.DeactivateUser(ctx, admin.ID, 999), ErrUserNotFound)
	require.NoError(t, p.DeactivateUser(ctx, admin.ID, ada.ID))

	stored, err := p.GetUserByID(ctx, ada.ID)
	require.NoError(t, err)
	assert.False(t, stored.Active)
}

func TestLocalProvider_ListUsers(t *testing.T) {
	ctx := context.Background()
	p := NewLocalProvider(dbtest.New(t))

	createUser(t, p, "admin", rbac.RoleManagement)
	ada := createUser(t, p, "ada", rbac.RoleDev)
	createUser(t, p, "bob", rbac.RoleDev)
	require.NoError(t, p.DeactivateUser(ctx, 0, ada.ID))

	users, total, err := p.ListUsers(ctx, "", nil, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, users, 3)
	assert.Equal(t, "admin", users[0].Username)

	users, total, err = p.ListUsers(ctx, rbac.RoleDev, nil, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, users, 1)
	assert.Equal(t, "bob", users[0].Username)

	active := true
	users, total, err = p.ListUsers(ctx, rbac.RoleDev, &active, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "bob", users[0].Username)

	count, err := p.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	byEmail, err := p.GetUserByEmail(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, "bob", byEmail.Username)

	_, err = p.GetUserByEmail(ctx, "nobody@example.com")
	require.ErrorIs(t, err, ErrUserNotFound)
}
