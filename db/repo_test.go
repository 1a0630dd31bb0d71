package db

import (
	"context"
	"strings"
	"testing"
	"time"

	"equipment_lending_portal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	return NewRepo(NewTestDB(t))
}

func seedUser(t *testing.T, r *Repo, name, role string) *models.User {
	t.Helper()
	u := &models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        strings.ToLower(name) + "@school.test",
		PasswordHash: "x",
		Role:         role,
	}
	require.NoError(t, r.CreateUser(context.Background(), u))
	return u
}

func seedEquipment(t *testing.T, r *Repo, name string, qty int) *models.Equipment {
	t.Helper()
	admin := seedUser(t, r, "admin-"+uuid.NewString()[:8], models.RoleAdmin)
	e := &models.Equipment{
		ID:        uuid.NewString(),
		Name:      name,
		Category:  "Lab Equipment",
		Condition: models.ConditionGood,
		Quantity:  qty,
		Available: qty,
		AddedBy:   admin.ID,
	}
	require.NoError(t, r.CreateEquipment(context.Background(), e))
	return e
}

func mustAvailable(t *testing.T, r *Repo, equipmentID string) int {
	t.Helper()
	e, err := r.FindEquipmentByID(context.Background(), equipmentID)
	require.NoError(t, err)
	return e.Available
}

func dueIn(days int) time.Time {
	return time.Now().UTC().AddDate(0, 0, days)
}
