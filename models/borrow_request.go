package models

import "time"

const BorrowRequestTable = "elp_borrow_requests"

// Request lifecycle:
//
//	PENDING -> APPROVED -> RETURNED
//	PENDING -> REJECTED
//	APPROVED -> OVERDUE -> RETURNED
//
// RETURNED and REJECTED are terminal.
const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
	StatusReturned = "RETURNED"
	StatusOverdue  = "OVERDUE"
)

// ActiveStatuses are the non-terminal states; at most one request per
// (user, equipment) pair may be in one of them at a time.
var ActiveStatuses = []string{StatusPending, StatusApproved, StatusOverdue}

// BorrowedStatuses are the states in which equipment is out with the user.
var BorrowedStatuses = []string{StatusApproved, StatusOverdue}

type BorrowRequest struct {
	ID          string `gorm:"type:uuid;primaryKey" json:"id"`
	EquipmentID string `gorm:"type:uuid;index;not null" json:"equipmentId"`
	UserID      string `gorm:"type:uuid;index;not null" json:"userId"`
	Quantity    int    `gorm:"not null" json:"quantity"`
	Status      string `gorm:"size:20;index;not null;default:'PENDING'" json:"status"`

	RequestDate        time.Time  `gorm:"index;not null" json:"requestDate"`
	BorrowDate         *time.Time `json:"borrowDate,omitempty"`
	ExpectedReturnDate time.Time  `gorm:"not null" json:"expectedReturnDate"`
	DueDate            time.Time  `gorm:"index;not null" json:"dueDate"`
	ActualReturnDate   *time.Time `json:"actualReturnDate,omitempty"`

	Purpose         string  `gorm:"type:text;not null" json:"purpose"`
	ApprovedBy      *string `gorm:"type:uuid" json:"approvedBy,omitempty"`
	RejectionReason string  `gorm:"type:text" json:"rejectionReason,omitempty"`
	Notes           string  `gorm:"type:text" json:"notes,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (BorrowRequest) TableName() string { return BorrowRequestTable }
