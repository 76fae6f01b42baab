package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lifelink/blood-donation-api/internal/lifecycle"
	"github.com/lifelink/blood-donation-api/internal/match"
	"github.com/lifelink/blood-donation-api/internal/model"
	"github.com/lifelink/blood-donation-api/internal/repository"
)

// RequestHandler exposes the blood request endpoints. Status
// transitions go through the lifecycle manager; plain reads hit the
// repositories directly.
type RequestHandler struct {
	Manager  *lifecycle.Manager
	Requests *repository.RequestRepo
	Donors   *repository.DonorRepo
	Users    *repository.UserRepo
	Appts    *repository.AppointmentRepo
}

func NewRequestHandler(m *lifecycle.Manager, r *repository.RequestRepo, d *repository.DonorRepo, u *repository.UserRepo, a *repository.AppointmentRepo) *RequestHandler {
	if m == nil || r == nil || d == nil || u == nil || a == nil {
		panic("nil dependency passed to NewRequestHandler")
	}
	return &RequestHandler{Manager: m, Requests: r, Donors: d, Users: u, Appts: a}
}

type createRequestReq struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	BloodGroup string `json:"blood_group"`
	Quantity   uint32 `json:"quantity"`
}

type setStatusReq struct {
	Status      string  `json:"status"`
	FulfilledBy *uint64 `json:"fulfilled_by"`
}

type requestPart struct {
	ID              uint64    `json:"id"`
	RequesterName   string    `json:"requester_name"`
	RequesterEmail  string    `json:"requester_email"`
	BloodGroup      string    `json:"blood_group"`
	Quantity        uint32    `json:"quantity"`
	Status          string    `json:"status"`
	FulfilledBy     *uint64   `json:"fulfilled_by,omitempty"`
	FulfilledByName *string   `json:"fulfilled_by_name,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func toRequestPart(r model.Request, donorName *string) requestPart {
	return requestPart{
		ID:              r.ID,
		RequesterName:   r.RequesterName,
		RequesterEmail:  r.RequesterEmail,
		BloodGroup:      r.BloodGroupNeeded,
		Quantity:        r.Quantity,
		Status:          r.Status,
		FulfilledBy:     r.FulfilledBy,
		FulfilledByName: donorName,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

// Create registers a new pending request.
func (h *RequestHandler) Create(c echo.Context) error {
	var req createRequestReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.BloodGroup = strings.ToUpper(strings.TrimSpace(req.BloodGroup))
	if req.Name == "" || req.Email == "" || req.BloodGroup == "" || req.Quantity == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "name, email, blood_group and quantity are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	created, err := h.Manager.CreateRequest(ctx, req.Name, req.Email, req.BloodGroup, req.Quantity)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "create request failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"request": toRequestPart(created, nil)})
}

// List returns every request, newest first.
func (h *RequestHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	rows, err := h.Requests.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "list requests failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"requests": toRequestParts(rows)})
}

// Mine returns the requests filed under the authenticated account's
// email address.
func (h *RequestHandler) Mine(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil || actor.Email == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	rows, err := h.Requests.ListByEmail(ctx, actor.Email)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "list requests failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"requests": toRequestParts(rows)})
}

// FulfilledToday returns requests fulfilled since midnight UTC.
func (h *RequestHandler) FulfilledToday(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	now := time.Now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	rows, err := h.Requests.ListFulfilledBetween(ctx, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "list requests failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"requests": toRequestParts(rows), "count": len(rows)})
}

// SetStatus applies an administrative status transition through the
// lifecycle manager.
func (h *RequestHandler) SetStatus(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request id"})
	}
	var req setStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	updated, err := h.Manager.SetStatus(ctx, actor, id, strings.ToLower(strings.TrimSpace(req.Status)), req.FulfilledBy)
	if err != nil {
		switch {
		case errors.Is(err, lifecycle.ErrInvalidStatus):
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "status must be pending, fulfilled or cancelled"})
		case errors.Is(err, repository.ErrRequestNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"message": "request not found"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "update request failed"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"request": toRequestPart(updated, nil)})
}

// Delete removes a request permanently.
func (h *RequestHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Manager.DeleteRequest(ctx, id); err != nil {
		if errors.Is(err, repository.ErrRequestNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "request not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "delete request failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

type matchPart struct {
	DonorID           uint64     `json:"donor_id"`
	Name              string     `json:"name"`
	BloodGroup        string     `json:"blood_group"`
	Donations         uint32     `json:"donations"`
	DonationsThisYear uint32     `json:"donations_this_year"`
	LastDonationDate  *time.Time `json:"last_donation_date,omitempty"`
	Verified          bool       `json:"verified"`
	Score             int        `json:"score"`
}

// Matches ranks registered donors against the request's blood group
// and returns the top candidates.
func (h *RequestHandler) Matches(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	req, err := h.Requests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRequestNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "request not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "lookup failed"})
	}

	donors, err := h.Donors.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "list donors failed"})
	}

	// Aggregate signals are best-effort: a failed lookup degrades the
	// score rather than failing the match.
	yearly, err := h.Appts.FulfilledCountByDonor(ctx)
	if err != nil {
		yearly = map[uint64]uint32{}
	}
	verified, err := h.Users.ListVerifiedEmails(ctx)
	if err != nil {
		verified = map[string]bool{}
	}

	candidates := make([]match.Candidate, 0, len(donors))
	for _, d := range donors {
		candidates = append(candidates, match.Candidate{
			Donor:             d,
			DonationsThisYear: yearly[d.ID],
			Verified:          verified[strings.ToLower(d.Email)],
		})
	}

	ranked := match.FindBestDonorMatch(req, candidates, time.Now().UTC())
	out := make([]matchPart, 0, len(ranked))
	for _, m := range ranked {
		out = append(out, matchPart{
			DonorID:           m.Donor.ID,
			Name:              m.Donor.Name,
			BloodGroup:        m.Donor.BloodGroup,
			Donations:         m.Donor.Donations,
			DonationsThisYear: m.DonationsThisYear,
			LastDonationDate:  m.Donor.LastDonationDate,
			Verified:          m.Verified,
			Score:             m.Score,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"matches": out})
}

func toRequestParts(rows []repository.RequestWithDonor) []requestPart {
	out := make([]requestPart, 0, len(rows))
	for _, r := range rows {
		out = append(out, toRequestPart(r.Request, r.FulfilledByName))
	}
	return out
}
