package notify

import (
	"context"
	"fmt"
	"log"
	"time"

	"equipment_lending_portal/db"
	"equipment_lending_portal/models"

	"github.com/google/uuid"
)

// Service raises the user-facing side effects of lifecycle transitions:
// a Notification row first, then a best-effort email. Email failures are
// logged and never surfaced to the lifecycle caller.
type Service struct {
	Repo   *db.Repo
	Mailer Mailer
	Now    func() time.Time
}

func NewService(repo *db.Repo, mailer Mailer) *Service {
	return &Service{Repo: repo, Mailer: mailer, Now: time.Now}
}

func (s *Service) RequestApproved(ctx context.Context, req *db.BorrowRequestRow) {
	n := s.newNotification(req, models.NotifRequestApproved,
		"Request Approved",
		fmt.Sprintf("Your request for %s has been approved. Due back %s.",
			req.EquipmentName, req.DueDate.Format("Jan 2, 2006")))
	s.deliver(ctx, n, req.UserEmail, TemplateData{
		UserName:      req.UserName,
		EquipmentName: req.EquipmentName,
		DueDate:       req.DueDate,
	})
}

func (s *Service) RequestRejected(ctx context.Context, req *db.BorrowRequestRow) {
	n := s.newNotification(req, models.NotifRequestRejected,
		"Request Rejected",
		fmt.Sprintf("Your request for %s was rejected: %s",
			req.EquipmentName, req.RejectionReason))
	s.deliver(ctx, n, req.UserEmail, TemplateData{
		UserName:      req.UserName,
		EquipmentName: req.EquipmentName,
		Reason:        req.RejectionReason,
	})
}

func (s *Service) ReturnConfirmed(ctx context.Context, req *db.BorrowRequestRow) {
	returnedAt := s.Now()
	if req.ActualReturnDate != nil {
		returnedAt = *req.ActualReturnDate
	}
	n := s.newNotification(req, models.NotifReturnConfirmation,
		"Return Confirmed",
		fmt.Sprintf("%s has been marked as returned. Thank you!", req.EquipmentName))
	s.deliver(ctx, n, req.UserEmail, TemplateData{
		UserName:      req.UserName,
		EquipmentName: req.EquipmentName,
		ReturnDate:    returnedAt,
	})
}

func (s *Service) newNotification(req *db.BorrowRequestRow, typ, title, message string) *models.Notification {
	reqID := req.ID
	eqID := req.EquipmentID
	return &models.Notification{
		ID:              uuid.NewString(),
		UserID:          req.UserID,
		Type:            typ,
		Title:           title,
		Message:         message,
		BorrowRequestID: &reqID,
		EquipmentID:     &eqID,
	}
}

// deliver persists the notification and then attempts the email. The row
// exists regardless of the email outcome; EmailSent flips only on success.
func (s *Service) deliver(ctx context.Context, n *models.Notification, to string, data TemplateData) {
	if err := s.Repo.CreateNotification(ctx, n); err != nil {
		log.Printf("notify: create %s for user %s: %v", n.Type, n.UserID, err)
		return
	}
	if _, err := s.Mailer.Send(to, n.Type, data); err != nil {
		log.Printf("notify: email %s to %s failed: %v", n.Type, to, err)
		return
	}
	if err := s.Repo.MarkNotificationEmailed(ctx, n.ID, s.Now()); err != nil {
		log.Printf("notify: mark emailed %s: %v", n.ID, err)
	}
}
