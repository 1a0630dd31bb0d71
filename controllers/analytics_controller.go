package controllers

import (
	"net/http"
	"strconv"
	"time"

	"equipment_lending_portal/app"

	"github.com/gin-gonic/gin"
)

type AnalyticsController struct{ *Srv }

func NewAnalyticsController(s *Srv) *AnalyticsController { return &AnalyticsController{Srv: s} }

// GET /api/analytics/dashboard
// 学生只看到自己的请求统计，其余角色看全局
func (ac *AnalyticsController) Dashboard(c *gin.Context) {
	userID := ""
	if u, ok := app.CurrentUser(c); ok && !u.IsStaffOrAdmin() {
		userID = u.ID
	}
	out, err := ac.Repo.DashboardCounts(c.Request.Context(), userID, time.Now())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"analytics": out})
}

// GET /api/analytics/equipment-usage
func (ac *AnalyticsController) EquipmentUsage(c *gin.Context) {
	out, err := ac.Repo.GetEquipmentUsage(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"usage": out})
}

// GET /api/analytics/request-trends?days=30
func (ac *AnalyticsController) RequestTrends(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))
	out, err := ac.Repo.GetRequestTrends(c.Request.Context(), days, time.Now())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"trends": out})
}

// GET /api/analytics/user-statistics（仅管理员）
func (ac *AnalyticsController) UserStatistics(c *gin.Context) {
	out, err := ac.Repo.GetUserStatistics(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"statistics": out})
}

// GET /api/analytics/overdue-report（staff/admin）
func (ac *AnalyticsController) OverdueReport(c *gin.Context) {
	rows, err := ac.Repo.GetOverdueReport(c.Request.Context(), time.Now())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"count": len(rows), "overdueItems": rows})
}
