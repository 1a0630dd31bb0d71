package main

import (
	"log"
	"os"

	"equipment_lending_portal/app"
	"equipment_lending_portal/config"
	"equipment_lending_portal/routes"
)

func main() {
	config.LoadEnv()

	application := app.MustNew()
	defer application.Close()

	r := application.Router

	// Health
	r.GET("/healthz", func(c *app.Ctx) { c.JSON(200, app.H{"ok": true}) })

	s := routes.RegisterRoutes(r, application)

	// 每日到点扫描：到期提醒 + 逾期告警
	s.Sched.Start()
	defer s.Sched.Stop()

	port := os.Getenv("PORT")
	if port == "" {
		port = "3001"
	}
	log.Printf("listening on :%s", port)
	_ = r.Run(":" + port)
}
