package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lifelink/blood-donation-api/internal/jobs"
	"github.com/lifelink/blood-donation-api/internal/model"
	"github.com/lifelink/blood-donation-api/internal/repository"
)

// AdminHandler exposes the administrative analytics and maintenance
// endpoints. All routes require the ADMIN role.
type AdminHandler struct {
	Users    *repository.UserRepo
	Donors   *repository.DonorRepo
	Requests *repository.RequestRepo
	Appts    *repository.AppointmentRepo
	Payments *repository.PaymentRepo
	Audit    *repository.AuditRepo
	Reminder *jobs.ReminderJob
}

func NewAdminHandler(u *repository.UserRepo, d *repository.DonorRepo, r *repository.RequestRepo, a *repository.AppointmentRepo, p *repository.PaymentRepo, audit *repository.AuditRepo, reminder *jobs.ReminderJob) *AdminHandler {
	if u == nil || d == nil || r == nil || a == nil || p == nil || audit == nil {
		panic("nil repository passed to NewAdminHandler")
	}
	return &AdminHandler{Users: u, Donors: d, Requests: r, Appts: a, Payments: p, Audit: audit, Reminder: reminder}
}

type statsResp struct {
	Users             uint64 `json:"users"`
	VerifiedUsers     uint64 `json:"verified_users"`
	Admins            uint64 `json:"admins"`
	Donors            uint64 `json:"donors"`
	PendingRequests   uint64 `json:"pending_requests"`
	FulfilledRequests uint64 `json:"fulfilled_requests"`
	CancelledRequests uint64 `json:"cancelled_requests"`
	Appointments      uint64 `json:"appointments"`
	DonationsToday    uint64 `json:"donations_today"`
}

// Stats aggregates counters across the data model. Each counter is a
// separate query; a failure in any of them fails the response.
func (h *AdminHandler) Stats(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	var out statsResp
	var err error

	if out.Users, err = h.Users.CountAll(ctx); err != nil {
		return statsErr(c, err)
	}
	if out.VerifiedUsers, err = h.Users.CountVerified(ctx); err != nil {
		return statsErr(c, err)
	}
	if out.Admins, err = h.Users.CountByRole(ctx, "ADMIN"); err != nil {
		return statsErr(c, err)
	}
	if out.Donors, err = h.Donors.CountAll(ctx); err != nil {
		return statsErr(c, err)
	}
	if out.PendingRequests, err = h.Requests.CountByStatus(ctx, model.RequestPending); err != nil {
		return statsErr(c, err)
	}
	if out.FulfilledRequests, err = h.Requests.CountByStatus(ctx, model.RequestFulfilled); err != nil {
		return statsErr(c, err)
	}
	if out.CancelledRequests, err = h.Requests.CountByStatus(ctx, model.RequestCancelled); err != nil {
		return statsErr(c, err)
	}
	if out.Appointments, err = h.Appts.CountAll(ctx); err != nil {
		return statsErr(c, err)
	}

	now := time.Now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if out.DonationsToday, err = h.Appts.CountFulfilledBetween(ctx, dayStart, dayStart.AddDate(0, 0, 1)); err != nil {
		return statsErr(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func statsErr(c echo.Context, _ error) error {
	return c.JSON(http.StatusInternalServerError, echo.Map{"message": "stats query failed"})
}

type auditPart struct {
	ID          uint64    `json:"id"`
	AdminID     uint64    `json:"admin_id"`
	AdminEmail  string    `json:"admin_email"`
	Action      string    `json:"action"`
	TargetModel string    `json:"target_model"`
	TargetID    string    `json:"target_id"`
	Timestamp   time.Time `json:"timestamp"`
}

// AuditLogs returns recent audit entries, newest first. The optional
// limit query parameter caps the page size.
func (h *AdminHandler) AuditLogs(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "limit must be a positive integer"})
		}
		limit = n
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	entries, err := h.Audit.List(ctx, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "list audit logs failed"})
	}
	out := make([]auditPart, 0, len(entries))
	for _, e := range entries {
		out = append(out, auditPart{
			ID:          e.ID,
			AdminID:     e.AdminID,
			AdminEmail:  e.AdminEmail,
			Action:      e.Action,
			TargetModel: e.TargetModel,
			TargetID:    e.TargetID,
			Timestamp:   e.Timestamp,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"audit_logs": out})
}

// DonationsThisYear returns requests fulfilled since January 1st,
// with the total count for dashboard charts.
func (h *AdminHandler) DonationsThisYear(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	now := time.Now().UTC()
	yearStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	rows, err := h.Requests.ListFulfilledBetween(ctx, yearStart, now)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "list donations failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"donations": toRequestParts(rows), "count": len(rows)})
}

// ListPayments returns every recorded payment with payer details.
func (h *AdminHandler) ListPayments(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	rows, err := h.Payments.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "list payments failed"})
	}

	type paymentPart struct {
		ID        uint64    `json:"id"`
		PaymentID string    `json:"payment_id"`
		UserID    uint64    `json:"user_id"`
		UserName  *string   `json:"user_name,omitempty"`
		UserEmail *string   `json:"user_email,omitempty"`
		Amount    float64   `json:"amount"`
		CreatedAt time.Time `json:"created_at"`
	}
	out := make([]paymentPart, 0, len(rows))
	for _, r := range rows {
		out = append(out, paymentPart{
			ID:        r.ID,
			PaymentID: r.PaymentID,
			UserID:    r.UserID,
			UserName:  r.UserName,
			UserEmail: r.UserEmail,
			Amount:    r.Amount,
			CreatedAt: r.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"payments": out})
}

// RunReminders triggers the appointment reminder job and reports how
// many messages were sent.
func (h *AdminHandler) RunReminders(c echo.Context) error {
	if h.Reminder == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"message": "reminder job not configured"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	sent, failed, err := h.Reminder.Run(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "reminder run failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"sent": sent, "failed": failed})
}
