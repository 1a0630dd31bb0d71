package db

import (
	"context"
	"testing"
	"time"

	"equipment_lending_portal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindUserByEmail(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	u := seedUser(t, r, "Elena", models.RoleStudent)

	// 按小写存储，查找时也归一化
	got, err := r.FindUserByEmail(ctx, "ELENA@school.test")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = r.FindUserByEmail(ctx, "nobody@school.test")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestTouchUserLogin(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	u := seedUser(t, r, "fred", models.RoleStaff)

	at := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, r.TouchUserLogin(ctx, u.ID, at))
	require.NoError(t, r.TouchUserLogin(ctx, u.ID, at.Add(time.Minute)))

	got, err := r.FindUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, got.LoginCount)
	require.NotNil(t, got.LastLoginAt)
}

func TestListUsersSearch(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	seedUser(t, r, "gina", models.RoleStudent)
	seedUser(t, r, "george", models.RoleStudent)
	seedUser(t, r, "harriet", models.RoleStaff)

	res, err := r.ListUsers(ctx, "g", 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, res.Total)

	res, err = r.ListUsers(ctx, "harriet@school.test", 1, 20)
	require.NoError(t, err)
	require.Len(t, res.Users, 1)
	assert.Equal(t, "harriet", res.Users[0].Name)

	// 分页
	res, err = r.ListUsers(ctx, "", 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, res.Total)
	assert.Len(t, res.Users, 2)
}

func TestSetUserRole(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	u := seedUser(t, r, "iris", models.RoleStudent)

	require.NoError(t, r.SetUserRole(ctx, u.ID, models.RoleStaff))
	got, err := r.FindUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleStaff, got.Role)
	assert.True(t, got.IsStaffOrAdmin())

	err = r.SetUserRole(ctx, "00000000-0000-0000-0000-000000000000", models.RoleStaff)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestCountUsersByRole(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	seedUser(t, r, "jack", models.RoleStudent)
	seedUser(t, r, "kim", models.RoleStudent)
	seedUser(t, r, "lara", models.RoleStaff)

	students, err := r.CountUsersByRole(ctx, models.RoleStudent)
	require.NoError(t, err)
	assert.EqualValues(t, 2, students)

	admins, err := r.CountUsersByRole(ctx, models.RoleAdmin)
	require.NoError(t, err)
	assert.EqualValues(t, 0, admins)
}
