package db

import (
	"context"
	"time"

	"equipment_lending_portal/dateutil"
	"equipment_lending_portal/models"

	"gorm.io/gorm"
)

// Read-only reporting queries. These are pure projections over existing
// rows; nothing here writes state.

type DashboardAnalytics struct {
	TotalEquipment     int64 `json:"totalEquipment"`
	AvailableEquipment int64 `json:"availableEquipment"`
	BorrowedEquipment  int64 `json:"borrowedEquipment"`
	ActiveBorrows      int64 `json:"activeBorrows"`
	PendingRequests    int64 `json:"pendingRequests"`
	OverdueItems       int64 `json:"overdueItems"`
	TotalReturns       int64 `json:"totalReturns"`
}

// DashboardCounts aggregates the landing-page numbers. A non-empty userID
// scopes the request counts to that user (student view); equipment counts
// are global either way. Overdue counts by due date, not by status, so the
// number is right even before the sweep has run today.
func (r *Repo) DashboardCounts(ctx context.Context, userID string, now time.Time) (DashboardAnalytics, error) {
	var out DashboardAnalytics
	db := r.DB.WithContext(ctx)

	if err := db.Model(&models.Equipment{}).Count(&out.TotalEquipment).Error; err != nil {
		return out, err
	}
	if err := db.Model(&models.Equipment{}).Where("available > 0").Count(&out.AvailableEquipment).Error; err != nil {
		return out, err
	}
	if err := db.Model(&models.Equipment{}).Where("available < quantity").Count(&out.BorrowedEquipment).Error; err != nil {
		return out, err
	}

	scoped := func() *gorm.DB {
		q := db.Model(&models.BorrowRequest{})
		if userID != "" {
			q = q.Where("user_id = ?", userID)
		}
		return q
	}

	if err := scoped().Where("status IN ?", models.BorrowedStatuses).Count(&out.ActiveBorrows).Error; err != nil {
		return out, err
	}
	if err := scoped().Where("status = ?", models.StatusPending).Count(&out.PendingRequests).Error; err != nil {
		return out, err
	}
	if err := scoped().
		Where("status IN ? AND due_date < ?", models.BorrowedStatuses, dateutil.StartOfDay(now)).
		Count(&out.OverdueItems).Error; err != nil {
		return out, err
	}
	if err := scoped().Where("status = ?", models.StatusReturned).Count(&out.TotalReturns).Error; err != nil {
		return out, err
	}
	return out, nil
}

type MostBorrowedRow struct {
	EquipmentID string `json:"equipmentId"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	BorrowCount int64  `json:"borrowCount"`
}

type CategoryRow struct {
	Category       string `json:"category"`
	Total          int64  `json:"total"`
	AvailableUnits int64  `json:"availableUnits"`
	BorrowedUnits  int64  `json:"borrowedUnits"`
}

type EquipmentUsage struct {
	MostBorrowed []MostBorrowedRow `json:"mostBorrowed"`
	ByCategory   []CategoryRow     `json:"byCategory"`
}

// approvedOutcomes are the statuses that count as a completed or ongoing
// loan for usage statistics.
var approvedOutcomes = []string{models.StatusApproved, models.StatusOverdue, models.StatusReturned}

func (r *Repo) GetEquipmentUsage(ctx context.Context) (EquipmentUsage, error) {
	var out EquipmentUsage
	db := r.DB.WithContext(ctx)

	err := db.
		Table(models.BorrowRequestTable+" br").
		Select("br.equipment_id, e.name, e.category, COUNT(*) AS borrow_count").
		Joins("JOIN "+models.EquipmentTable+" e ON e.id = br.equipment_id").
		Where("br.status IN ?", approvedOutcomes).
		Group("br.equipment_id, e.name, e.category").
		Order("borrow_count DESC").
		Limit(5).
		Scan(&out.MostBorrowed).Error
	if err != nil {
		return out, err
	}

	err = db.
		Table(models.EquipmentTable).
		Select(`category,
			COUNT(*) AS total,
			SUM(available) AS available_units,
			SUM(quantity - available) AS borrowed_units`).
		Group("category").
		Order("category ASC").
		Scan(&out.ByCategory).Error
	return out, err
}

type TrendRow struct {
	Day      string `json:"day"`
	Count    int64  `json:"count"`
	Approved int64  `json:"approved"`
	Rejected int64  `json:"rejected"`
	Pending  int64  `json:"pending"`
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

type RequestTrends struct {
	RequestsByDay      []TrendRow    `json:"requestsByDay"`
	StatusDistribution []StatusCount `json:"statusDistribution"`
}

// GetRequestTrends buckets requests by calendar day over a trailing window
// and splits each bucket by outcome. OVERDUE and RETURNED requests were
// approved once, so they count into the approved split.
func (r *Repo) GetRequestTrends(ctx context.Context, days int, now time.Time) (RequestTrends, error) {
	if days <= 0 {
		days = 30
	}
	start := dateutil.StartOfDay(dateutil.AddDays(now, -days))

	var out RequestTrends
	db := r.DB.WithContext(ctx)

	err := db.
		Table(models.BorrowRequestTable).
		Select(`DATE(created_at) AS day,
			COUNT(*) AS count,
			SUM(CASE WHEN status IN ? THEN 1 ELSE 0 END) AS approved,
			SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS rejected,
			SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS pending`,
			approvedOutcomes, models.StatusRejected, models.StatusPending).
		Where("created_at >= ?", start).
		Group("DATE(created_at)").
		Order("day ASC").
		Scan(&out.RequestsByDay).Error
	if err != nil {
		return out, err
	}

	err = db.
		Table(models.BorrowRequestTable).
		Select("status, COUNT(*) AS count").
		Group("status").
		Order("status ASC").
		Scan(&out.StatusDistribution).Error
	return out, err
}

type TopBorrowerRow struct {
	UserID      string `json:"userId"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	BorrowCount int64  `json:"borrowCount"`
}

type UserStatistics struct {
	TotalUsers   int64            `json:"totalUsers"`
	StudentCount int64            `json:"studentCount"`
	StaffCount   int64            `json:"staffCount"`
	AdminCount   int64            `json:"adminCount"`
	TopBorrowers []TopBorrowerRow `json:"topBorrowers"`
}

func (r *Repo) GetUserStatistics(ctx context.Context) (UserStatistics, error) {
	var out UserStatistics
	db := r.DB.WithContext(ctx)

	if err := db.Model(&models.User{}).Count(&out.TotalUsers).Error; err != nil {
		return out, err
	}
	for role, dst := range map[string]*int64{
		models.RoleStudent: &out.StudentCount,
		models.RoleStaff:   &out.StaffCount,
		models.RoleAdmin:   &out.AdminCount,
	} {
		n, err := r.CountUsersByRole(ctx, role)
		if err != nil {
			return out, err
		}
		*dst = n
	}

	err := db.
		Table(models.BorrowRequestTable+" br").
		Select("br.user_id, u.name, u.email, u.role, COUNT(*) AS borrow_count").
		Joins("JOIN "+models.UserTable+" u ON u.id = br.user_id").
		Where("br.status IN ?", approvedOutcomes).
		Group("br.user_id, u.name, u.email, u.role").
		Order("borrow_count DESC").
		Limit(5).
		Scan(&out.TopBorrowers).Error
	return out, err
}

type OverdueReportRow struct {
	BorrowRequestRow
	DaysOverdue int `json:"daysOverdue"`
}

// GetOverdueReport materializes every borrowed request past its due date
// with a computed days-overdue figure, oldest due date first.
func (r *Repo) GetOverdueReport(ctx context.Context, now time.Time) ([]OverdueReportRow, error) {
	rows, err := r.ListOverdue(ctx, dateutil.StartOfDay(now))
	if err != nil {
		return nil, err
	}
	out := make([]OverdueReportRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, OverdueReportRow{
			BorrowRequestRow: row,
			DaysOverdue:      -dateutil.DaysUntilDue(row.DueDate, now),
		})
	}
	return out, nil
}
