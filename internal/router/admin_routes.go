package router

import (
	"github.com/labstack/echo/v4"

	"github.com/lifelink/blood-donation-api/internal/handler"
	"github.com/lifelink/blood-donation-api/internal/middleware"
)

// RegisterAdmin registers ADMIN-scoped endpoints under /v1. All
// routes require a valid JWT and the ADMIN role.
func RegisterAdmin(e *echo.Echo, adm *handler.AdminHandler, req *handler.RequestHandler, appt *handler.AppointmentHandler, fb *handler.FeedbackHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ADMIN"),
	)

	// ---- Request lifecycle ----
	g.PUT("/requests/:id", req.SetStatus)
	g.DELETE("/requests/:id", req.Delete)
	g.GET("/requests/:id/matches", req.Matches)

	// ---- Analytics and maintenance ----
	g.GET("/admin/stats", adm.Stats)
	g.GET("/admin/audit-logs", adm.AuditLogs)
	g.GET("/admin/donations-this-year", adm.DonationsThisYear)
	g.GET("/admin/appointments", appt.List)
	g.GET("/admin/payments", adm.ListPayments)
	g.GET("/admin/feedback", fb.List)
	g.POST("/admin/reminders/run", adm.RunReminders)
}
