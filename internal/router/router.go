// Package router maps URL paths to handlers and attaches the auth
// middleware for each group.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/lifelink/blood-donation-api/internal/handler"
	"github.com/lifelink/blood-donation-api/internal/middleware"
)

// RegisterRoutes registers routes that require no authentication.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the account endpoints. Register, login,
// refresh, logout and the verification code exchange are public; /me
// and /profile require a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, v *handler.VerifyHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)

	// Verification is public: the account cannot log in before it is
	// verified, so the code exchange cannot sit behind the JWT check.
	e.POST("/v1/verify/send", v.Send)
	e.POST("/v1/verify/confirm", v.Confirm)

	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
	auth.GET("/profile", a.Me)
	auth.POST("/auth/logout-all", a.LogoutAll)
}
