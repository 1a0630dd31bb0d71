package routes

import (
	"equipment_lending_portal/app"
	"equipment_lending_portal/controllers"
	"equipment_lending_portal/models"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, a *app.App) *controllers.Srv {
	// 控制器与依赖
	s := controllers.GetSrv(a)
	authCtl := controllers.GetAuthController(s)
	userCtl := controllers.GetUserController(s)
	equipCtl := controllers.NewEquipmentController(s)
	reqCtl := controllers.NewBorrowRequestController(s)
	notifCtl := controllers.NewNotificationController(s)
	analyticsCtl := controllers.NewAnalyticsController(s)

	// 复用的中间件
	authMW := app.AuthRequired(a.AppSessions(), s.Repo)
	staffMW := app.RequireRole(models.RoleStaff, models.RoleAdmin)
	adminMW := app.RequireRole(models.RoleAdmin)

	// ------------------------------
	// 认证（公开 + 受保护）
	// ------------------------------
	auth := r.Group("/api/auth")
	{
		auth.POST("/register", authCtl.Register)
		auth.POST("/login", authCtl.Login)
		auth.POST("/logout", authMW, authCtl.Logout)
		auth.GET("/me", authMW, authCtl.Me)
	}

	// ------------------------------
	// 设备：浏览公开，管理仅 admin
	// ------------------------------
	equipment := r.Group("/api/equipment")
	{
		equipment.GET("", equipCtl.List)
		equipment.GET("/:id", equipCtl.Get)
		equipment.POST("", authMW, adminMW, equipCtl.Create)
		equipment.PUT("/:id", authMW, adminMW, equipCtl.Update)
		equipment.DELETE("/:id", authMW, adminMW, equipCtl.Delete)
	}

	// ------------------------------
	// 借还请求
	// ------------------------------
	requests := r.Group("/api/borrow-requests", authMW)
	{
		requests.GET("", reqCtl.List)
		requests.POST("", reqCtl.Create)
		requests.GET("/:id", reqCtl.Get)
		requests.PUT("/:id/approve", staffMW, reqCtl.Approve)
		requests.PUT("/:id/reject", staffMW, reqCtl.Reject)
		requests.PUT("/:id/return", staffMW, reqCtl.Return)
	}

	// ------------------------------
	// 通知
	// ------------------------------
	notifications := r.Group("/api/notifications", authMW)
	{
		notifications.GET("", notifCtl.List)
		notifications.PUT("/:id/read", notifCtl.MarkRead)
		notifications.PUT("/read-all", notifCtl.MarkAllRead)
	}

	// ------------------------------
	// 报表
	// ------------------------------
	analytics := r.Group("/api/analytics", authMW)
	{
		analytics.GET("/dashboard", analyticsCtl.Dashboard)
		analytics.GET("/equipment-usage", analyticsCtl.EquipmentUsage)
		analytics.GET("/request-trends", analyticsCtl.RequestTrends)
		analytics.GET("/user-statistics", adminMW, analyticsCtl.UserStatistics)
		analytics.GET("/overdue-report", staffMW, analyticsCtl.OverdueReport)
	}

	// ------------------------------
	// 管理：用户 + 手动扫描
	// ------------------------------
	admin := r.Group("/api", authMW, adminMW)
	{
		admin.GET("/users", userCtl.ListUsers)
		admin.GET("/users/:id", userCtl.GetUser)
		admin.PUT("/users/:id/role", userCtl.SetRole)
		admin.POST("/admin/sweep/due", notifCtl.TriggerDueReminders)
		admin.POST("/admin/sweep/overdue", notifCtl.TriggerOverdueCheck)
	}

	return s
}
