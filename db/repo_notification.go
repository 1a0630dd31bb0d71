package db

import (
	"context"
	"errors"
	"time"

	"equipment_lending_portal/models"

	"gorm.io/gorm"
)

var ErrNotificationNotFound = errors.New("notification not found")

// Notifications

func (r *Repo) CreateNotification(ctx context.Context, n *models.Notification) error {
	return r.DB.WithContext(ctx).Create(n).Error
}

// NotificationExistsSince reports whether a notification of the given type
// for this (user, request) pair was created at or after since. The sweep
// uses it with the start of the current day to stay idempotent.
func (r *Repo) NotificationExistsSince(ctx context.Context, userID, requestID, typ string, since time.Time) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND borrow_request_id = ? AND type = ? AND created_at >= ?",
			userID, requestID, typ, since).
		Count(&n).Error
	return n > 0, err
}

type ListNotificationsResult struct {
	Notifications []models.Notification `json:"notifications"`
	Total         int64                 `json:"total"`
	Unread        int64                 `json:"unread"`
}

func (r *Repo) ListNotifications(ctx context.Context, userID string, page, size int) (ListNotificationsResult, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}

	base := r.DB.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ?", userID)

	var out ListNotificationsResult
	if err := base.Session(&gorm.Session{}).Count(&out.Total).Error; err != nil {
		return out, err
	}
	if err := base.Session(&gorm.Session{}).Where("is_read = ?", false).Count(&out.Unread).Error; err != nil {
		return out, err
	}
	err := base.Session(&gorm.Session{}).
		Order("created_at DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&out.Notifications).Error
	return out, err
}

// MarkNotificationRead scopes by user so one user cannot mark another's.
func (r *Repo) MarkNotificationRead(ctx context.Context, id, userID string) error {
	res := r.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (r *Repo) MarkAllNotificationsRead(ctx context.Context, userID string) (int64, error) {
	res := r.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

// MarkNotificationEmailed records a successful delivery.
func (r *Repo) MarkNotificationEmailed(ctx context.Context, id string, at time.Time) error {
	return r.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"email_sent":    true,
			"email_sent_at": at,
		}).Error
}
