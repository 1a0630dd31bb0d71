package db

import (
	"context"
	"testing"

	"equipment_lending_portal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReserveAndRelease(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	eq := seedEquipment(t, r, "Oscilloscope", 4)

	ok, err := r.Reserve(ctx, eq.ID, 3)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, mustAvailable(t, r, eq.ID))

	// 余量不足时拒绝，且不改动任何东西
	ok, err = r.Reserve(ctx, eq.ID, 2)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, mustAvailable(t, r, eq.ID))

	require.NoError(t, r.Release(ctx, eq.ID, 3))
	assert.Equal(t, 4, mustAvailable(t, r, eq.ID))

	// 多还也只能到总量
	require.NoError(t, r.Release(ctx, eq.ID, 5))
	assert.Equal(t, 4, mustAvailable(t, r, eq.ID))

	_, err = r.Reserve(ctx, eq.ID, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestUpdateEquipmentQuantityAdjustsAvailable(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	eq := seedEquipment(t, r, "3D Printer", 5)

	ok, err := r.Reserve(ctx, eq.ID, 4)
	require.NoError(t, err)
	require.True(t, ok)
	// quantity 5, available 1

	up := 8
	e, err := r.UpdateEquipment(ctx, eq.ID, UpdateEquipmentInput{Quantity: &up})
	require.NoError(t, err)
	assert.Equal(t, 8, e.Quantity)
	assert.Equal(t, 4, e.Available)

	// 改小到低于在借数量时 available 下限是 0
	down := 2
	e, err = r.UpdateEquipment(ctx, eq.ID, UpdateEquipmentInput{Quantity: &down})
	require.NoError(t, err)
	assert.Equal(t, 2, e.Quantity)
	assert.Equal(t, 0, e.Available)

	neg := -1
	_, err = r.UpdateEquipment(ctx, eq.ID, UpdateEquipmentInput{Quantity: &neg})
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestUpdateEquipmentLeavesReservationsIntact(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	eq := seedEquipment(t, r, "Microscope", 5)

	ok, err := r.Reserve(ctx, eq.ID, 2)
	require.NoError(t, err)
	require.True(t, ok)

	// 只改名不能把 available 写回借出前的值
	newName := "Confocal Microscope"
	e, err := r.UpdateEquipment(ctx, eq.ID, UpdateEquipmentInput{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, "Confocal Microscope", e.Name)
	assert.Equal(t, 3, e.Available)
	assert.Equal(t, 5, e.Quantity)

	// 数量修改按当前行值换算，中间的扣减保留
	ok, err = r.Reserve(ctx, eq.ID, 1)
	require.NoError(t, err)
	require.True(t, ok)

	up := 7
	e, err = r.UpdateEquipment(ctx, eq.ID, UpdateEquipmentInput{Quantity: &up})
	require.NoError(t, err)
	assert.Equal(t, 7, e.Quantity)
	assert.Equal(t, 4, e.Available) // 2 + (7-5)，三件仍在外面

	missing := "Nothing"
	_, err = r.UpdateEquipment(ctx, "00000000-0000-0000-0000-000000000000", UpdateEquipmentInput{Name: &missing})
	assert.ErrorIs(t, err, ErrEquipmentNotFound)
}

func TestListEquipmentFilters(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	mic := seedEquipment(t, r, "USB Microphone", 2)
	cam := seedEquipment(t, r, "DSLR Camera", 1)

	other := "Cameras/Electronics"
	_, err := r.UpdateEquipment(ctx, cam.ID, UpdateEquipmentInput{Category: &other})
	require.NoError(t, err)

	byCat, err := r.ListEquipment(ctx, EquipmentQuery{Category: "Cameras/Electronics"})
	require.NoError(t, err)
	require.Len(t, byCat, 1)
	assert.Equal(t, cam.ID, byCat[0].ID)

	// 名称搜索不区分大小写
	bySearch, err := r.ListEquipment(ctx, EquipmentQuery{Search: "microph"})
	require.NoError(t, err)
	require.Len(t, bySearch, 1)
	assert.Equal(t, mic.ID, bySearch[0].ID)

	ok, err := r.Reserve(ctx, cam.ID, 1)
	require.NoError(t, err)
	require.True(t, ok)

	avail, err := r.ListEquipment(ctx, EquipmentQuery{AvailableOnly: true})
	require.NoError(t, err)
	require.Len(t, avail, 1)
	assert.Equal(t, mic.ID, avail[0].ID)
}

func TestDeleteEquipment(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	eq := seedEquipment(t, r, "Whiteboard", 1)

	require.NoError(t, r.DeleteEquipment(ctx, eq.ID))
	_, err := r.FindEquipmentByID(ctx, eq.ID)
	assert.ErrorIs(t, err, ErrEquipmentNotFound)

	assert.ErrorIs(t, r.DeleteEquipment(ctx, eq.ID), ErrEquipmentNotFound)
}

func TestValidCategoryAndCondition(t *testing.T) {
	for _, c := range models.EquipmentCategories {
		assert.True(t, models.ValidCategory(c))
	}
	assert.False(t, models.ValidCategory("Furniture"))
	assert.True(t, models.ValidCondition(models.ConditionGood))
	assert.False(t, models.ValidCondition("broken"))
}
