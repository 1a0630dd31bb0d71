package db

import (
	"context"
	"testing"

	"equipment_lending_portal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBorrowLifecycleRoundTrip(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	student := seedUser(t, r, "alice", models.RoleStudent)
	staff := seedUser(t, r, "bob", models.RoleStaff)
	eq := seedEquipment(t, r, "Microscope", 5)

	req, err := r.CreateBorrowRequest(ctx, CreateBorrowRequestInput{
		EquipmentID:        eq.ID,
		UserID:             student.ID,
		Quantity:           2,
		ExpectedReturnDate: dueIn(7),
		Purpose:            "Biology project",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, req.Status)
	assert.False(t, req.RequestDate.IsZero())
	assert.Equal(t, req.ExpectedReturnDate, req.DueDate)
	// 请求阶段不占用库存
	assert.Equal(t, 5, mustAvailable(t, r, eq.ID))

	approved, err := r.ApproveBorrowRequest(ctx, req.ID, staff.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, approved.Status)
	require.NotNil(t, approved.BorrowDate)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, staff.ID, *approved.ApprovedBy)
	assert.Equal(t, 3, mustAvailable(t, r, eq.ID))

	returned, err := r.ReturnBorrowRequest(ctx, req.ID, "all good")
	require.NoError(t, err)
	assert.Equal(t, models.StatusReturned, returned.Status)
	require.NotNil(t, returned.ActualReturnDate)
	assert.Equal(t, "all good", returned.Notes)
	// 归还恢复到借出前的数量
	assert.Equal(t, 5, mustAvailable(t, r, eq.ID))
}

func TestCreateBorrowRequestValidation(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	student := seedUser(t, r, "carol", models.RoleStudent)
	eq := seedEquipment(t, r, "Camera", 3)

	base := CreateBorrowRequestInput{
		EquipmentID:        eq.ID,
		UserID:             student.ID,
		Quantity:           1,
		ExpectedReturnDate: dueIn(3),
		Purpose:            "Film class",
	}

	in := base
	in.Quantity = 0
	_, err := r.CreateBorrowRequest(ctx, in)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	in = base
	in.Purpose = "   "
	_, err = r.CreateBorrowRequest(ctx, in)
	assert.ErrorIs(t, err, ErrMissingPurpose)

	in = base
	in.EquipmentID = "00000000-0000-0000-0000-000000000000"
	_, err = r.CreateBorrowRequest(ctx, in)
	assert.ErrorIs(t, err, ErrEquipmentNotFound)

	in = base
	in.Quantity = 4 // 只有 3 台
	_, err = r.CreateBorrowRequest(ctx, in)
	assert.ErrorIs(t, err, ErrInsufficientQuantity)
}

func TestDuplicateActiveRequest(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	student := seedUser(t, r, "dave", models.RoleStudent)
	staff := seedUser(t, r, "erin", models.RoleStaff)
	eq := seedEquipment(t, r, "Guitar", 2)

	in := CreateBorrowRequestInput{
		EquipmentID:        eq.ID,
		UserID:             student.ID,
		Quantity:           1,
		ExpectedReturnDate: dueIn(5),
		Purpose:            "Recital",
	}

	first, err := r.CreateBorrowRequest(ctx, in)
	require.NoError(t, err)

	// PENDING 期间不允许再来一条
	_, err = r.CreateBorrowRequest(ctx, in)
	assert.ErrorIs(t, err, ErrDuplicateActiveRequest)

	// APPROVED 同样算活跃
	_, err = r.ApproveBorrowRequest(ctx, first.ID, staff.ID)
	require.NoError(t, err)
	_, err = r.CreateBorrowRequest(ctx, in)
	assert.ErrorIs(t, err, ErrDuplicateActiveRequest)

	// 归还后可以再次申请
	_, err = r.ReturnBorrowRequest(ctx, first.ID, "")
	require.NoError(t, err)
	_, err = r.CreateBorrowRequest(ctx, in)
	assert.NoError(t, err)
}

func TestApproveRechecksAvailability(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	a := seedUser(t, r, "frank", models.RoleStudent)
	b := seedUser(t, r, "grace", models.RoleStudent)
	staff := seedUser(t, r, "heidi", models.RoleStaff)
	eq := seedEquipment(t, r, "Projector", 1)

	mk := func(userID string) *models.BorrowRequest {
		req, err := r.CreateBorrowRequest(ctx, CreateBorrowRequestInput{
			EquipmentID:        eq.ID,
			UserID:             userID,
			Quantity:           1,
			ExpectedReturnDate: dueIn(2),
			Purpose:            "Presentation",
		})
		require.NoError(t, err)
		return req
	}

	// 两条请求在创建时都能通过余量检查
	r1 := mk(a.ID)
	r2 := mk(b.ID)

	_, err := r.ApproveBorrowRequest(ctx, r1.ID, staff.ID)
	require.NoError(t, err)

	// 第二条审批时余量已经不够
	_, err = r.ApproveBorrowRequest(ctx, r2.ID, staff.ID)
	assert.ErrorIs(t, err, ErrInsufficientQuantity)
	assert.Equal(t, 0, mustAvailable(t, r, eq.ID))

	// 失败的审批不能动请求状态
	row, err := r.GetBorrowRequest(ctx, r2.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, row.Status)
}

func TestApproveRejectOnlyFromPending(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	student := seedUser(t, r, "ivan", models.RoleStudent)
	staff := seedUser(t, r, "judy", models.RoleStaff)
	eq := seedEquipment(t, r, "Telescope", 2)

	req, err := r.CreateBorrowRequest(ctx, CreateBorrowRequestInput{
		EquipmentID:        eq.ID,
		UserID:             student.ID,
		Quantity:           1,
		ExpectedReturnDate: dueIn(4),
		Purpose:            "Astronomy night",
	})
	require.NoError(t, err)

	_, err = r.ApproveBorrowRequest(ctx, req.ID, staff.ID)
	require.NoError(t, err)

	_, err = r.ApproveBorrowRequest(ctx, req.ID, staff.ID)
	assert.ErrorIs(t, err, ErrAlreadyProcessed)
	// 重复审批不能再次扣减
	assert.Equal(t, 1, mustAvailable(t, r, eq.ID))

	_, err = r.RejectBorrowRequest(ctx, req.ID, staff.ID, "too late")
	assert.ErrorIs(t, err, ErrAlreadyProcessed)
}

func TestRejectRequiresReasonAndLeavesInventory(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	student := seedUser(t, r, "kate", models.RoleStudent)
	staff := seedUser(t, r, "leo", models.RoleStaff)
	eq := seedEquipment(t, r, "Drone", 2)

	req, err := r.CreateBorrowRequest(ctx, CreateBorrowRequestInput{
		EquipmentID:        eq.ID,
		UserID:             student.ID,
		Quantity:           2,
		ExpectedReturnDate: dueIn(1),
		Purpose:            "Aerial shots",
	})
	require.NoError(t, err)

	_, err = r.RejectBorrowRequest(ctx, req.ID, staff.ID, "  ")
	assert.ErrorIs(t, err, ErrMissingReason)

	rejected, err := r.RejectBorrowRequest(ctx, req.ID, staff.ID, "needed for open day")
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, rejected.Status)
	assert.Equal(t, "needed for open day", rejected.RejectionReason)
	// 拒绝不涉及库存
	assert.Equal(t, 2, mustAvailable(t, r, eq.ID))
}

func TestReturnOnlyFromBorrowedStates(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	student := seedUser(t, r, "mallory", models.RoleStudent)
	eq := seedEquipment(t, r, "Keyboard", 1)

	req, err := r.CreateBorrowRequest(ctx, CreateBorrowRequestInput{
		EquipmentID:        eq.ID,
		UserID:             student.ID,
		Quantity:           1,
		ExpectedReturnDate: dueIn(2),
		Purpose:            "Practice",
	})
	require.NoError(t, err)

	// PENDING 不能归还，也不能有副作用
	_, err = r.ReturnBorrowRequest(ctx, req.ID, "")
	assert.ErrorIs(t, err, ErrNotBorrowed)
	assert.Equal(t, 1, mustAvailable(t, r, eq.ID))

	_, err = r.ReturnBorrowRequest(ctx, "00000000-0000-0000-0000-000000000000", "")
	assert.ErrorIs(t, err, ErrRequestNotFound)
}

func TestReturnFromOverdue(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	student := seedUser(t, r, "nina", models.RoleStudent)
	staff := seedUser(t, r, "oscar", models.RoleStaff)
	eq := seedEquipment(t, r, "Tripod", 3)

	req, err := r.CreateBorrowRequest(ctx, CreateBorrowRequestInput{
		EquipmentID:        eq.ID,
		UserID:             student.ID,
		Quantity:           1,
		ExpectedReturnDate: dueIn(-1), // 已经过期
		Purpose:            "Photo walk",
	})
	require.NoError(t, err)
	_, err = r.ApproveBorrowRequest(ctx, req.ID, staff.ID)
	require.NoError(t, err)

	flipped, err := r.MarkOverdue(ctx, req.ID)
	require.NoError(t, err)
	assert.True(t, flipped)

	// 已经是 OVERDUE，再标记是空操作
	flipped, err = r.MarkOverdue(ctx, req.ID)
	require.NoError(t, err)
	assert.False(t, flipped)

	returned, err := r.ReturnBorrowRequest(ctx, req.ID, "late but back")
	require.NoError(t, err)
	assert.Equal(t, models.StatusReturned, returned.Status)
	assert.Equal(t, 3, mustAvailable(t, r, eq.ID))
}

func TestReleaseCappedAfterQuantityEdit(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	student := seedUser(t, r, "peggy", models.RoleStudent)
	staff := seedUser(t, r, "quinn", models.RoleStaff)
	eq := seedEquipment(t, r, "Soldering Iron", 5)

	req, err := r.CreateBorrowRequest(ctx, CreateBorrowRequestInput{
		EquipmentID:        eq.ID,
		UserID:             student.ID,
		Quantity:           2,
		ExpectedReturnDate: dueIn(3),
		Purpose:            "Electronics lab",
	})
	require.NoError(t, err)
	_, err = r.ApproveBorrowRequest(ctx, req.ID, staff.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, mustAvailable(t, r, eq.ID))

	// 借出期间总量从 5 改到 3：available 3 + (3-5) = 1
	newQty := 3
	e, err := r.UpdateEquipment(ctx, eq.ID, UpdateEquipmentInput{Quantity: &newQty})
	require.NoError(t, err)
	assert.Equal(t, 1, e.Available)

	// 归还 2 台会越过新总量，封顶在 quantity
	_, err = r.ReturnBorrowRequest(ctx, req.ID, "")
	require.NoError(t, err)
	e, err = r.FindEquipmentByID(ctx, eq.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, e.Available)
	assert.Equal(t, 3, e.Quantity)
}

func TestListBorrowRequestsScoping(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	a := seedUser(t, r, "rita", models.RoleStudent)
	b := seedUser(t, r, "sam", models.RoleStudent)
	eq := seedEquipment(t, r, "Violin", 4)

	for _, u := range []*models.User{a, b} {
		_, err := r.CreateBorrowRequest(ctx, CreateBorrowRequestInput{
			EquipmentID:        eq.ID,
			UserID:             u.ID,
			Quantity:           1,
			ExpectedReturnDate: dueIn(2),
			Purpose:            "Orchestra",
		})
		require.NoError(t, err)
	}

	all, err := r.ListBorrowRequests(ctx, BorrowRequestQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
	// join 的展示字段要填上
	assert.NotEmpty(t, all[0].UserName)
	assert.Equal(t, "Violin", all[0].EquipmentName)

	mine, err := r.ListBorrowRequests(ctx, BorrowRequestQuery{UserID: a.ID})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, a.ID, mine[0].UserID)

	pending, err := r.ListBorrowRequests(ctx, BorrowRequestQuery{Status: models.StatusPending})
	require.NoError(t, err)
	assert.Len(t, pending, 2)
}
