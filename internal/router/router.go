package router

import (
	"github.com/cloudwego/hertz/pkg/app/server"

	"OnShift/internal/handler"
	"OnShift/internal/middleware"
)

func Register(h *server.Hertz) {

	h.Use(middleware.RecoverMiddleware())
	h.Use(middleware.CORSMiddleware())
	h.Use(middleware.OpenTelemetryMiddleware())

	v1 := h.Group("/v1")

	// 打卡路由
	attendance := v1.Group("/attendance")
	attendance.Use(middleware.AuthMiddleware())
	attendance.Use(middleware.GeneralRateLimitMiddleware())
	{
		attendance.POST("/check-in", handler.CheckIn)
		attendance.POST("/check-out", handler.CheckOut)
		attendance.GET("/history", handler.History)
	}
}
