package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lifelink/blood-donation-api/internal/lifecycle"
	"github.com/lifelink/blood-donation-api/internal/model"
	"github.com/lifelink/blood-donation-api/internal/repository"
)

// DonorHandler exposes the donor registry. The registry is separate
// from user accounts; donation statistics on it are owned by the
// request lifecycle and are not writable here.
type DonorHandler struct {
	Donors *repository.DonorRepo
	Audit  lifecycle.Recorder
}

func NewDonorHandler(d *repository.DonorRepo, audit lifecycle.Recorder) *DonorHandler {
	if d == nil {
		panic("nil repository passed to NewDonorHandler")
	}
	return &DonorHandler{Donors: d, Audit: audit}
}

type donorReq struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	BloodGroup string `json:"blood_group"`
	Address    string `json:"address"`
}

type donorPart struct {
	ID               uint64     `json:"id"`
	Name             string     `json:"name"`
	Email            string     `json:"email"`
	Phone            string     `json:"phone"`
	BloodGroup       string     `json:"blood_group"`
	Address          string     `json:"address"`
	Donations        uint32     `json:"donations"`
	LastDonationDate *time.Time `json:"last_donation_date,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func toDonorPart(d model.Donor) donorPart {
	return donorPart{
		ID:               d.ID,
		Name:             d.Name,
		Email:            d.Email,
		Phone:            d.Phone,
		BloodGroup:       d.BloodGroup,
		Address:          d.Address,
		Donations:        d.Donations,
		LastDonationDate: d.LastDonationDate,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}

func (r donorReq) toModel() (model.Donor, error) {
	d := model.Donor{
		Name:       strings.TrimSpace(r.Name),
		Email:      strings.ToLower(strings.TrimSpace(r.Email)),
		Phone:      strings.TrimSpace(r.Phone),
		BloodGroup: strings.ToUpper(strings.TrimSpace(r.BloodGroup)),
		Address:    strings.TrimSpace(r.Address),
	}
	if d.Name == "" || d.Email == "" || d.BloodGroup == "" {
		return model.Donor{}, errors.New("name, email and blood_group are required")
	}
	return d, nil
}

// List returns the full donor registry.
func (h *DonorHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	donors, err := h.Donors.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "list donors failed"})
	}
	out := make([]donorPart, 0, len(donors))
	for _, d := range donors {
		out = append(out, toDonorPart(d))
	}
	return c.JSON(http.StatusOK, echo.Map{"donors": out})
}

// Create registers a new donor with zero donations.
func (h *DonorHandler) Create(c echo.Context) error {
	var req donorReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	d, err := req.toModel()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	id, err := h.Donors.Create(ctx, d)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "create donor failed"})
	}
	created, err := h.Donors.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "create donor failed"})
	}
	h.record(c, ctx, "CREATE", id)
	return c.JSON(http.StatusCreated, echo.Map{"donor": toDonorPart(created)})
}

// Update changes contact details. Donation statistics are not
// accepted here; they belong to the request lifecycle.
func (h *DonorHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid donor id"})
	}
	var req donorReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	d, err := req.toModel()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Donors.Update(ctx, id, d); err != nil {
		if errors.Is(err, repository.ErrDonorNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "donor not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "update donor failed"})
	}
	updated, err := h.Donors.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "update donor failed"})
	}
	h.record(c, ctx, "UPDATE", id)
	return c.JSON(http.StatusOK, echo.Map{"donor": toDonorPart(updated)})
}

// Delete removes a donor from the registry.
func (h *DonorHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid donor id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Donors.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrDonorNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "donor not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "delete donor failed"})
	}
	h.record(c, ctx, "DELETE", id)
	return c.NoContent(http.StatusNoContent)
}

// record appends an audit entry for a registry mutation, best-effort.
func (h *DonorHandler) record(c echo.Context, ctx context.Context, action string, donorID uint64) {
	if h.Audit == nil {
		return
	}
	if actor, err := getActor(c); err == nil {
		_ = h.Audit.Record(ctx, actor.ID, actor.Email, action, "Donor", strconvID(donorID))
	}
}
