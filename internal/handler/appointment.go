package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lifelink/blood-donation-api/internal/model"
	"github.com/lifelink/blood-donation-api/internal/repository"
)

// AppointmentHandler exposes user-facing appointment scheduling.
// Synthetic fulfillment appointments are created by the lifecycle
// manager, not here.
type AppointmentHandler struct {
	Appts *repository.AppointmentRepo
}

func NewAppointmentHandler(a *repository.AppointmentRepo) *AppointmentHandler {
	if a == nil {
		panic("nil repository passed to NewAppointmentHandler")
	}
	return &AppointmentHandler{Appts: a}
}

type scheduleReq struct {
	Date   string `json:"date"` // RFC 3339
	Reason string `json:"reason"`
}

type appointmentPart struct {
	ID        uint64    `json:"id"`
	UserID    *uint64   `json:"user_id,omitempty"`
	DonorID   *uint64   `json:"donor_id,omitempty"`
	UserName  *string   `json:"user_name,omitempty"`
	DonorName *string   `json:"donor_name,omitempty"`
	Date      time.Time `json:"date"`
	Status    string    `json:"status"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func toAppointmentPart(a model.Appointment) appointmentPart {
	return appointmentPart{
		ID:        a.ID,
		UserID:    a.UserID,
		DonorID:   a.DonorID,
		Date:      a.Date,
		Status:    a.Status,
		Reason:    a.Reason,
		CreatedAt: a.CreatedAt,
	}
}

// Schedule books a donation appointment for the authenticated user.
// The date must be in the future.
func (h *AppointmentHandler) Schedule(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	var req scheduleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	date, err := time.Parse(time.RFC3339, strings.TrimSpace(req.Date))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "date must be RFC 3339"})
	}
	if !date.After(time.Now().UTC()) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "date must be in the future"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	appt := model.Appointment{
		UserID: &uid,
		Date:   date.UTC(),
		Status: model.AppointmentScheduled,
		Reason: strings.TrimSpace(req.Reason),
	}
	id, err := h.Appts.Create(ctx, appt)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "schedule appointment failed"})
	}
	appt.ID = id
	return c.JSON(http.StatusCreated, echo.Map{"appointment": toAppointmentPart(appt)})
}

// Mine lists the authenticated user's appointments.
func (h *AppointmentHandler) Mine(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	appts, err := h.Appts.ListByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "list appointments failed"})
	}
	out := make([]appointmentPart, 0, len(appts))
	for _, a := range appts {
		out = append(out, toAppointmentPart(a))
	}
	return c.JSON(http.StatusOK, echo.Map{"appointments": out})
}

// List returns every appointment with joined names. Exposed to all
// authenticated users so donors can see clinic load; admins get the
// same view under /v1/admin/appointments.
func (h *AppointmentHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	rows, err := h.Appts.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "list appointments failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"appointments": toAppointmentParts(rows)})
}

// Reschedule moves one of the caller's own appointments to a new
// future date and flips its status to rescheduled.
func (h *AppointmentHandler) Reschedule(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid appointment id"})
	}
	var req scheduleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	date, err := time.Parse(time.RFC3339, strings.TrimSpace(req.Date))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "date must be RFC 3339"})
	}
	if !date.After(time.Now().UTC()) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "date must be in the future"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Appts.Reschedule(ctx, id, uid, date.UTC(), strings.TrimSpace(req.Reason)); err != nil {
		if errors.Is(err, repository.ErrAppointmentNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "appointment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "reschedule failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "appointment rescheduled"})
}

func toAppointmentParts(rows []repository.AppointmentWithNames) []appointmentPart {
	out := make([]appointmentPart, 0, len(rows))
	for _, r := range rows {
		p := toAppointmentPart(r.Appointment)
		p.UserName = r.UserName
		p.DonorName = r.DonorName
		out = append(out, p)
	}
	return out
}
