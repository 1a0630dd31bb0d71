package models

import "time"

const NotificationTable = "elp_notifications"

// Notification types double as email template names.
const (
	NotifRequestApproved    = "REQUEST_APPROVED"
	NotifRequestRejected    = "REQUEST_REJECTED"
	NotifDueReminder        = "DUE_REMINDER"
	NotifOverdueAlert       = "OVERDUE_ALERT"
	NotifReturnConfirmation = "RETURN_CONFIRMATION"
)

// Notification rows are created by lifecycle transitions and the daily
// sweep. EmailSent reflects delivery outcome only; the row itself exists
// regardless of whether the email went out.
type Notification struct {
	ID      string `gorm:"type:uuid;primaryKey" json:"id"`
	UserID  string `gorm:"type:uuid;index;not null" json:"userId"`
	Type    string `gorm:"size:30;not null" json:"type"`
	Title   string `gorm:"size:200;not null" json:"title"`
	Message string `gorm:"type:text;not null" json:"message"`

	BorrowRequestID *string `gorm:"type:uuid;index" json:"borrowRequestId,omitempty"`
	EquipmentID     *string `gorm:"type:uuid" json:"equipmentId,omitempty"`

	IsRead      bool       `gorm:"not null;default:false;index" json:"isRead"`
	EmailSent   bool       `gorm:"not null;default:false" json:"emailSent"`
	EmailSentAt *time.Time `json:"emailSentAt,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Notification) TableName() string { return NotificationTable }
