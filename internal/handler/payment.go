package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// PaymentStore is the slice of the payment repository the confirm
// endpoint needs.
type PaymentStore interface {
	ExistsSince(ctx context.Context, userID uint64, amount float64, since time.Time) (bool, error)
	Create(ctx context.Context, paymentID string, userID uint64, amount float64) error
}

// PaymentHandler records confirmed donations of money. There is no
// gateway integration here; the client completes payment externally
// and calls confirm, which is idempotent per user, amount and day.
type PaymentHandler struct {
	Payments PaymentStore
}

func NewPaymentHandler(p PaymentStore) *PaymentHandler {
	if p == nil {
		panic("nil store passed to NewPaymentHandler")
	}
	return &PaymentHandler{Payments: p}
}

type confirmPaymentReq struct {
	Amount float64 `json:"amount"`
}

// Confirm records a payment once per user, amount and calendar day.
// A repeat call inside the same day returns the duplicate marker
// instead of inserting a second row.
func (h *PaymentHandler) Confirm(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	var req confirmPaymentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	if req.Amount <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "amount must be positive"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	now := time.Now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	exists, err := h.Payments.ExistsSince(ctx, uid, req.Amount, dayStart)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "payment lookup failed"})
	}
	if exists {
		return c.JSON(http.StatusOK, echo.Map{"message": "payment already recorded", "duplicate": true})
	}

	paymentID := "pay_" + uuid.NewString()
	if err := h.Payments.Create(ctx, paymentID, uid, req.Amount); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "record payment failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "payment recorded", "payment_id": paymentID})
}
