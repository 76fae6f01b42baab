// Package handler contains the HTTP layer: request decoding, auth
// context extraction and response shaping. Business rules live in the
// lifecycle, match and screening packages; handlers stay thin.
package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lifelink/blood-donation-api/internal/lifecycle"
)

// dbTimeout bounds every repository call made from a handler.
const dbTimeout = 5 * time.Second

// Health reports liveness for load balancers and monitoring.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// getUserID extracts the authenticated user id set by the JWT
// middleware. JWT numeric claims decode as float64, so several types
// are accepted.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// getActor builds the acting identity for audit and lifecycle calls
// from the JWT middleware's context values.
func getActor(c echo.Context) (lifecycle.Actor, error) {
	id, err := getUserID(c)
	if err != nil {
		return lifecycle.Actor{}, err
	}
	email, _ := c.Get("email").(string)
	role, _ := c.Get("role").(string)
	return lifecycle.Actor{ID: id, Email: email, Role: role}, nil
}

// pathID parses the :id route parameter.
func pathID(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}

// strconvID renders a numeric id as the text form audit entries use.
func strconvID(id uint64) string {
	return strconv.FormatUint(id, 10)
}
