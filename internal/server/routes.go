// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/handlers"
	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/metrics"
	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/middleware"
	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/models"
	"github.com/labstack/echo/v4"
)

func setupRoutes(e *echo.Echo, svc *Services, m *metrics.Metrics) {
	h := handlers.New(svc.DB)
	authH := handlers.NewAuth(svc.Identity)
	usersH := handlers.NewUsers(svc.Directory)
	attH := handlers.NewAttendance(svc.Attendance)

	requireAuth := middleware.RequireAuth(svc.Identity)
	privileged := middleware.RequireRole(models.RoleHR, models.RoleAdmin)
	adminOnly := middleware.RequireRole(models.RoleAdmin)

	e.GET("/health", h.Health)
	if m.Enabled() {
		e.GET("/metrics", echo.WrapHandler(m.Handler()))
	}

	api := e.Group("/api")

	authG := api.Group("/auth")
	authG.POST("/signup", authH.SignUp)
	authG.POST("/verify-email", authH.VerifyEmail)
	authG.POST("/resend-otp", authH.ResendOTP)
	authG.POST("/signin", authH.SignIn)
	authG.GET("/me", authH.Me)

	users := api.Group("/users", requireAuth)
	users.GET("", usersH.List)
	users.GET("/by-email", usersH.GetByEmail)
	users.GET("/:id", usersH.Get)
	users.PATCH("/:id", usersH.Update)
	users.PUT("/:id/active", usersH.SetActive, privileged)
	users.DELETE("/:id", usersH.Remove, adminOnly)

	att := api.Group("/attendance", requireAuth)
	att.POST("/check-in", attH.CheckIn)
	att.POST("/check-out", attH.CheckOut)
	att.GET("/today", attH.Today)
	att.GET("/range", attH.Range)
	att.GET("/summary", attH.Summary)
	att.GET("", attH.All, privileged)
	att.PATCH("/:id", attH.Update, privileged)
	att.DELETE("/:id", attH.Delete, privileged)
}
