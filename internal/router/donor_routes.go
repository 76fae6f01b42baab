package router

import (
	"github.com/labstack/echo/v4"

	"github.com/lifelink/blood-donation-api/internal/handler"
	"github.com/lifelink/blood-donation-api/internal/middleware"
)

// RegisterAPI registers the endpoints shared by donors and admins
// under /v1. All routes require a valid JWT and a known role.
func RegisterAPI(e *echo.Echo, req *handler.RequestHandler, don *handler.DonorHandler, appt *handler.AppointmentHandler, pay *handler.PaymentHandler, fb *handler.FeedbackHandler, scr *handler.ScreeningHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("DONOR", "ADMIN"),
	)

	// ---- Requests ----
	g.POST("/requests", req.Create)
	g.GET("/requests", req.List)
	g.GET("/requests/my", req.Mine)
	g.GET("/requests/fulfilled/today", req.FulfilledToday)

	// ---- Appointments ----
	g.GET("/appointments", appt.List)
	g.GET("/appointments/my", appt.Mine)
	g.POST("/appointments", appt.Schedule)
	g.PUT("/appointments/:id/reschedule", appt.Reschedule)

	// ---- Donor registry ----
	g.GET("/donors", don.List)
	g.POST("/donors", don.Create)
	g.PUT("/donors/:id", don.Update)
	g.DELETE("/donors/:id", don.Delete)

	// ---- Misc ----
	g.POST("/feedback", fb.Submit)
	g.POST("/payments/confirm", pay.Confirm)
	g.POST("/screening", scr.Screen)
}
