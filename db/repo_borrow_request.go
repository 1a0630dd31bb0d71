package db

import (
	"context"
	"errors"
	"strings"
	"time"

	"equipment_lending_portal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrRequestNotFound        = errors.New("borrow request not found")
	ErrInsufficientQuantity   = errors.New("insufficient quantity available")
	ErrDuplicateActiveRequest = errors.New("user already has an active request for this equipment")
	ErrAlreadyProcessed       = errors.New("request already processed")
	ErrNotBorrowed            = errors.New("request is not in a borrowed state")
	ErrMissingReason          = errors.New("rejection reason is required")
	ErrMissingPurpose         = errors.New("purpose is required")
	ErrMissingReturnDate      = errors.New("expected return date is required")
)

type CreateBorrowRequestInput struct {
	EquipmentID        string
	UserID             string
	Quantity           int
	ExpectedReturnDate time.Time
	Purpose            string
}

// CreateBorrowRequest inserts a new PENDING request. Availability is only
// checked here, not reserved: the decrement happens at approval. Concurrent
// requests may therefore all pass this check until one is approved.
func (r *Repo) CreateBorrowRequest(ctx context.Context, in CreateBorrowRequestInput) (*models.BorrowRequest, error) {
	if in.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	if strings.TrimSpace(in.Purpose) == "" {
		return nil, ErrMissingPurpose
	}
	if in.ExpectedReturnDate.IsZero() {
		return nil, ErrMissingReturnDate
	}

	var req *models.BorrowRequest
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var e models.Equipment
		if err := tx.First(&e, "id = ?", in.EquipmentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEquipmentNotFound
			}
			return err
		}
		if e.Available < in.Quantity {
			return ErrInsufficientQuantity
		}

		// 同一 (user, equipment) 只允许一条未完结请求
		var n int64
		if err := tx.Model(&models.BorrowRequest{}).
			Where("user_id = ? AND equipment_id = ? AND status IN ?",
				in.UserID, in.EquipmentID, models.ActiveStatuses).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrDuplicateActiveRequest
		}

		now := time.Now().UTC()
		req = &models.BorrowRequest{
			ID:                 uuid.NewString(),
			EquipmentID:        in.EquipmentID,
			UserID:             in.UserID,
			Quantity:           in.Quantity,
			Status:             models.StatusPending,
			RequestDate:        now,
			ExpectedReturnDate: in.ExpectedReturnDate,
			DueDate:            in.ExpectedReturnDate,
			Purpose:            in.Purpose,
		}
		return tx.Create(req).Error
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// ApproveBorrowRequest reserves the quantity and flips the request to
// APPROVED in one transaction. Both writes are conditional updates checked
// by rows-affected, so concurrent approvals against the same equipment
// cannot over-allocate: the loser of the availability race gets
// ErrInsufficientQuantity, the loser of the status race ErrAlreadyProcessed.
func (r *Repo) ApproveBorrowRequest(ctx context.Context, requestID, actorID string) (*models.BorrowRequest, error) {
	var req models.BorrowRequest
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&req, "id = ?", requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRequestNotFound
			}
			return err
		}
		if req.Status != models.StatusPending {
			return ErrAlreadyProcessed
		}

		now := time.Now().UTC()

		// 余量复核 + 扣减，一条条件 UPDATE
		ok, err := reserve(tx, req.EquipmentID, req.Quantity, now)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInsufficientQuantity
		}

		res := tx.Model(&models.BorrowRequest{}).
			Where("id = ? AND status = ?", requestID, models.StatusPending).
			Updates(map[string]interface{}{
				"status":      models.StatusApproved,
				"approved_by": actorID,
				"borrow_date": now,
				"updated_at":  now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// 状态已被并发处理，回滚扣减
			return ErrAlreadyProcessed
		}

		req.Status = models.StatusApproved
		req.ApprovedBy = &actorID
		req.BorrowDate = &now
		req.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// RejectBorrowRequest is a pure status write; nothing was reserved for a
// PENDING request, so the inventory is untouched.
func (r *Repo) RejectBorrowRequest(ctx context.Context, requestID, actorID, reason string) (*models.BorrowRequest, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, ErrMissingReason
	}

	var req models.BorrowRequest
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&req, "id = ?", requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRequestNotFound
			}
			return err
		}
		if req.Status != models.StatusPending {
			return ErrAlreadyProcessed
		}

		now := time.Now().UTC()
		res := tx.Model(&models.BorrowRequest{}).
			Where("id = ? AND status = ?", requestID, models.StatusPending).
			Updates(map[string]interface{}{
				"status":           models.StatusRejected,
				"approved_by":      actorID,
				"rejection_reason": reason,
				"updated_at":       now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyProcessed
		}

		req.Status = models.StatusRejected
		req.ApprovedBy = &actorID
		req.RejectionReason = reason
		req.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// ReturnBorrowRequest restores availability and closes the request. Valid
// from APPROVED or OVERDUE; the release is capped at the equipment's total
// quantity in case the total was edited down while the items were out.
func (r *Repo) ReturnBorrowRequest(ctx context.Context, requestID, notes string) (*models.BorrowRequest, error) {
	var req models.BorrowRequest
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&req, "id = ?", requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRequestNotFound
			}
			return err
		}
		if req.Status != models.StatusApproved && req.Status != models.StatusOverdue {
			return ErrNotBorrowed
		}

		now := time.Now().UTC()
		update := map[string]interface{}{
			"status":             models.StatusReturned,
			"actual_return_date": now,
			"updated_at":         now,
		}
		if strings.TrimSpace(notes) != "" {
			update["notes"] = notes
		}

		res := tx.Model(&models.BorrowRequest{}).
			Where("id = ? AND status IN ?", requestID, models.BorrowedStatuses).
			Updates(update)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotBorrowed
		}

		if err := release(tx, req.EquipmentID, req.Quantity, now); err != nil {
			return err
		}

		req.Status = models.StatusReturned
		req.ActualReturnDate = &now
		if strings.TrimSpace(notes) != "" {
			req.Notes = notes
		}
		req.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// MarkOverdue transitions APPROVED -> OVERDUE. Returns false without error
// when the request left the overdue-eligible state in the meantime (e.g.
// returned mid-scan); the sweep just skips it.
func (r *Repo) MarkOverdue(ctx context.Context, requestID string) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.BorrowRequest{}).
		Where("id = ? AND status = ?", requestID, models.StatusApproved).
		Updates(map[string]interface{}{
			"status":     models.StatusOverdue,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// BorrowRequestRow is the request joined with the requester and the
// equipment, the shape the frontend lists and the sweep consume.
type BorrowRequestRow struct {
	models.BorrowRequest
	UserName          string `json:"userName"`
	UserEmail         string `json:"userEmail"`
	UserStudentID     string `json:"userStudentId,omitempty"`
	EquipmentName     string `json:"equipmentName"`
	EquipmentCategory string `json:"equipmentCategory"`
	ApprovedByName    string `json:"approvedByName,omitempty"`
}

func (r *Repo) requestRows(ctx context.Context) *gorm.DB {
	return r.DB.WithContext(ctx).
		Table(models.BorrowRequestTable+" br").
		Select(`br.*,
			u.name       AS user_name,
			u.email      AS user_email,
			u.student_id AS user_student_id,
			e.name       AS equipment_name,
			e.category   AS equipment_category,
			a.name       AS approved_by_name`).
		Joins("JOIN "+models.UserTable+" u ON u.id = br.user_id").
		Joins("JOIN "+models.EquipmentTable+" e ON e.id = br.equipment_id").
		Joins("LEFT JOIN " + models.UserTable + " a ON a.id = br.approved_by")
}

func (r *Repo) GetBorrowRequest(ctx context.Context, id string) (*BorrowRequestRow, error) {
	var row BorrowRequestRow
	err := r.requestRows(ctx).Where("br.id = ?", id).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == "" {
		return nil, ErrRequestNotFound
	}
	return &row, nil
}

type BorrowRequestQuery struct {
	UserID string // 非空时只看该用户的请求（学生视角）
	Status string
}

func (r *Repo) ListBorrowRequests(ctx context.Context, q BorrowRequestQuery) ([]BorrowRequestRow, error) {
	tx := r.requestRows(ctx)
	if q.UserID != "" {
		tx = tx.Where("br.user_id = ?", q.UserID)
	}
	if q.Status != "" {
		tx = tx.Where("br.status = ?", q.Status)
	}
	var rows []BorrowRequestRow
	err := tx.Order("br.request_date DESC").Scan(&rows).Error
	return rows, err
}

// Sweep queries.

// ListDueSoon returns APPROVED requests with due dates inside [from, to].
func (r *Repo) ListDueSoon(ctx context.Context, from, to time.Time) ([]BorrowRequestRow, error) {
	var rows []BorrowRequestRow
	err := r.requestRows(ctx).
		Where("br.status = ? AND br.due_date >= ? AND br.due_date <= ?",
			models.StatusApproved, from, to).
		Order("br.due_date ASC").
		Scan(&rows).Error
	return rows, err
}

// ListOverdue returns APPROVED or OVERDUE requests due strictly before the
// cutoff (normally the start of today, so due-today items are not yet in).
func (r *Repo) ListOverdue(ctx context.Context, before time.Time) ([]BorrowRequestRow, error) {
	var rows []BorrowRequestRow
	err := r.requestRows(ctx).
		Where("br.status IN ? AND br.due_date < ?", models.BorrowedStatuses, before).
		Order("br.due_date ASC").
		Scan(&rows).Error
	return rows, err
}
