package controllers

import (
	"net/http"
	"strconv"

	"equipment_lending_portal/app"

	"github.com/gin-gonic/gin"
)

type NotificationController struct{ *Srv }

func NewNotificationController(s *Srv) *NotificationController {
	return &NotificationController{Srv: s}
}

// GET /api/notifications?page=&size=
func (nc *NotificationController) List(c *gin.Context) {
	userID, ok := app.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized"})
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	res, err := nc.Repo.ListNotifications(c.Request.Context(), userID, page, size)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// PUT /api/notifications/:id/read
func (nc *NotificationController) MarkRead(c *gin.Context) {
	userID, _ := app.CurrentUserID(c)
	if err := nc.Repo.MarkNotificationRead(c.Request.Context(), c.Param("id"), userID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// PUT /api/notifications/read-all
func (nc *NotificationController) MarkAllRead(c *gin.Context) {
	userID, _ := app.CurrentUserID(c)
	n, err := nc.Repo.MarkAllNotificationsRead(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true, "updated": n})
}

// POST /api/admin/sweep/due（仅管理员，手动触发）
func (nc *NotificationController) TriggerDueReminders(c *gin.Context) {
	nc.Sched.RunLocked(c.Request.Context(), "due-reminders", nc.Sched.Sweep.CheckDueReminders)
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// POST /api/admin/sweep/overdue（仅管理员，手动触发）
func (nc *NotificationController) TriggerOverdueCheck(c *gin.Context) {
	nc.Sched.RunLocked(c.Request.Context(), "overdue-check", nc.Sched.Sweep.CheckOverdueItems)
	c.JSON(http.StatusOK, app.H{"ok": true})
}
