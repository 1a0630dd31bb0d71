package notify

import (
	"context"
	"fmt"
	"log"
	"time"

	"equipment_lending_portal/dateutil"
	"equipment_lending_portal/db"
	"equipment_lending_portal/models"
)

// DueSoonDays is how far ahead the reminder scan looks, today included.
const DueSoonDays = 2

// Sweep is the daily scanner over active requests. Both scans are
// idempotent within a calendar day: before inserting they check for an
// existing notification of the same type created since the start of the
// day. Now is injectable so tests can pin the clock.
type Sweep struct {
	Repo   *db.Repo
	Mailer Mailer
	Now    func() time.Time
}

func NewSweep(repo *db.Repo, mailer Mailer) *Sweep {
	return &Sweep{Repo: repo, Mailer: mailer, Now: time.Now}
}

func (s *Sweep) service() *Service {
	return &Service{Repo: s.Repo, Mailer: s.Mailer, Now: s.Now}
}

// CheckDueReminders finds APPROVED requests due within [today, today+2]
// and raises one DUE_REMINDER per request per day. A failure on one
// request never blocks the rest of the batch.
func (s *Sweep) CheckDueReminders(ctx context.Context) error {
	now := s.Now()
	today := dateutil.StartOfDay(now)
	horizon := dateutil.EndOfDay(dateutil.AddDays(today, DueSoonDays))

	rows, err := s.Repo.ListDueSoon(ctx, today, horizon)
	if err != nil {
		return err
	}
	log.Printf("sweep: %d request(s) due within %d day(s)", len(rows), DueSoonDays)

	svc := s.service()
	for i := range rows {
		row := &rows[i]
		exists, err := s.Repo.NotificationExistsSince(ctx, row.UserID, row.ID, models.NotifDueReminder, today)
		if err != nil {
			log.Printf("sweep: reminder dedup check for request %s: %v", row.ID, err)
			continue
		}
		if exists {
			continue
		}

		daysLeft := dateutil.DaysUntilDue(row.DueDate, now)
		n := svc.newNotification(row, models.NotifDueReminder,
			"Equipment Due Soon",
			fmt.Sprintf("%s is due for return in %d day(s)", row.EquipmentName, daysLeft))
		svc.deliver(ctx, n, row.UserEmail, TemplateData{
			UserName:      row.UserName,
			EquipmentName: row.EquipmentName,
			DueDate:       row.DueDate,
			Days:          daysLeft,
		})
	}
	return nil
}

// CheckOverdueItems finds borrowed requests past their due date,
// transitions APPROVED ones to OVERDUE, and raises one OVERDUE_ALERT per
// request per day. The status transition is conditional: a request
// returned between the scan read and the write is simply skipped.
func (s *Sweep) CheckOverdueItems(ctx context.Context) error {
	now := s.Now()
	today := dateutil.StartOfDay(now)

	rows, err := s.Repo.ListOverdue(ctx, today)
	if err != nil {
		return err
	}
	log.Printf("sweep: %d overdue request(s)", len(rows))

	svc := s.service()
	for i := range rows {
		row := &rows[i]

		if row.Status == models.StatusApproved {
			flipped, err := s.Repo.MarkOverdue(ctx, row.ID)
			if err != nil {
				log.Printf("sweep: mark overdue %s: %v", row.ID, err)
				continue
			}
			if !flipped {
				// returned (or otherwise processed) mid-scan
				continue
			}
		}

		exists, err := s.Repo.NotificationExistsSince(ctx, row.UserID, row.ID, models.NotifOverdueAlert, today)
		if err != nil {
			log.Printf("sweep: alert dedup check for request %s: %v", row.ID, err)
			continue
		}
		if exists {
			continue
		}

		daysOverdue := -dateutil.DaysUntilDue(row.DueDate, now)
		n := svc.newNotification(row, models.NotifOverdueAlert,
			"Equipment Overdue",
			fmt.Sprintf("%s is %d day(s) overdue", row.EquipmentName, daysOverdue))
		svc.deliver(ctx, n, row.UserEmail, TemplateData{
			UserName:      row.UserName,
			EquipmentName: row.EquipmentName,
			DueDate:       row.DueDate,
			Days:          daysOverdue,
		})
	}
	return nil
}
