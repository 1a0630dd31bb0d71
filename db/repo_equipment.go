package db

import (
	"context"
	"errors"
	"strings"
	"time"

	"equipment_lending_portal/models"

	"gorm.io/gorm"
)

var (
	ErrEquipmentNotFound = errors.New("equipment not found")
	ErrInvalidQuantity   = errors.New("quantity must be at least 1")
)

// Equipment

func (r *Repo) CreateEquipment(ctx context.Context, e *models.Equipment) error {
	return r.DB.WithContext(ctx).Create(e).Error
}

func (r *Repo) FindEquipmentByID(ctx context.Context, id string) (*models.Equipment, error) {
	var e models.Equipment
	if err := r.DB.WithContext(ctx).First(&e, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEquipmentNotFound
		}
		return nil, err
	}
	return &e, nil
}

type EquipmentQuery struct {
	Category      string // 精确匹配类别
	Search        string // 名称模糊搜索
	AvailableOnly bool   // 只看 available > 0
}

func (r *Repo) ListEquipment(ctx context.Context, q EquipmentQuery) ([]models.Equipment, error) {
	tx := r.DB.WithContext(ctx).Model(&models.Equipment{})
	if q.Category != "" {
		tx = tx.Where("category = ?", q.Category)
	}
	if s := strings.TrimSpace(q.Search); s != "" {
		tx = tx.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(s)+"%")
	}
	if q.AvailableOnly {
		tx = tx.Where("available > 0")
	}
	var items []models.Equipment
	err := tx.Order("created_at DESC").Find(&items).Error
	return items, err
}

type UpdateEquipmentInput struct {
	Name        *string
	Category    *string
	Description *string
	Condition   *string
	Quantity    *int
	ImageURL    *string
}

// UpdateEquipment applies field edits as one conditional UPDATE. A quantity
// change adjusts available by the same delta, floored at zero (adjustTotal
// semantics); the delta is computed in SQL against the row's current values,
// so a concurrent reserve/release committed in between is never overwritten
// with a stale in-memory copy.
func (r *Repo) UpdateEquipment(ctx context.Context, id string, in UpdateEquipmentInput) (*models.Equipment, error) {
	updates := map[string]interface{}{}
	if in.Name != nil {
		updates["name"] = *in.Name
	}
	if in.Category != nil {
		updates["category"] = *in.Category
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.Condition != nil {
		updates["condition"] = *in.Condition
	}
	if in.ImageURL != nil {
		updates["image_url"] = *in.ImageURL
	}
	if in.Quantity != nil {
		if *in.Quantity < 0 {
			return nil, ErrInvalidQuantity
		}
		// quantity 和 available 在同一条 UPDATE 里按旧行值换算
		updates["quantity"] = *in.Quantity
		updates["available"] = gorm.Expr(
			"CASE WHEN available + (? - quantity) < 0 THEN 0 ELSE available + (? - quantity) END",
			*in.Quantity, *in.Quantity)
	}

	if len(updates) > 0 {
		updates["updated_at"] = time.Now()
		res := r.DB.WithContext(ctx).Model(&models.Equipment{}).
			Where("id = ?", id).
			Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, ErrEquipmentNotFound
		}
	}
	return r.FindEquipmentByID(ctx, id)
}

func (r *Repo) DeleteEquipment(ctx context.Context, id string) error {
	res := r.DB.WithContext(ctx).Delete(&models.Equipment{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrEquipmentNotFound
	}
	return nil
}

// reserve 原子检查并扣减：UPDATE ... WHERE available >= qty。
// 没有行被更新即余量不足（或设备不存在）。
func reserve(tx *gorm.DB, equipmentID string, qty int, at time.Time) (bool, error) {
	res := tx.Model(&models.Equipment{}).
		Where("id = ? AND available >= ?", equipmentID, qty).
		Updates(map[string]interface{}{
			"available":  gorm.Expr("available - ?", qty),
			"updated_at": at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// release 归还扣减的数量，封顶到 quantity（总量可能在借出期间被改小）。
func release(tx *gorm.DB, equipmentID string, qty int, at time.Time) error {
	return tx.Model(&models.Equipment{}).
		Where("id = ?", equipmentID).
		Updates(map[string]interface{}{
			"available": gorm.Expr(
				"CASE WHEN available + ? > quantity THEN quantity ELSE available + ? END",
				qty, qty),
			"updated_at": at,
		}).Error
}

// Reserve / Release expose the same primitives outside a lifecycle
// transaction (manual corrections, seeding).
func (r *Repo) Reserve(ctx context.Context, equipmentID string, qty int) (bool, error) {
	if qty < 1 {
		return false, ErrInvalidQuantity
	}
	return reserve(r.DB.WithContext(ctx), equipmentID, qty, time.Now())
}

func (r *Repo) Release(ctx context.Context, equipmentID string, qty int) error {
	if qty < 1 {
		return ErrInvalidQuantity
	}
	return release(r.DB.WithContext(ctx), equipmentID, qty, time.Now())
}
