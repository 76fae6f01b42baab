package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/lifelink/blood-donation-api/internal/notify"
	"github.com/lifelink/blood-donation-api/internal/repository"
	"github.com/lifelink/blood-donation-api/internal/verification"
)

// VerifyHandler implements the email verification code exchange.
type VerifyHandler struct {
	Users  *repository.UserRepo
	Codes  verification.CodeStore
	Sender notify.Sender
}

func NewVerifyHandler(u *repository.UserRepo, codes verification.CodeStore, sender notify.Sender) *VerifyHandler {
	if u == nil || codes == nil {
		panic("nil dependency passed to NewVerifyHandler")
	}
	return &VerifyHandler{Users: u, Codes: codes, Sender: sender}
}

type verifySendReq struct {
	Email string `json:"email"`
}
type verifyConfirmReq struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// Send issues a fresh code for the account's email and queues the
// verification message. Reissuing overwrites any previous code.
func (h *VerifyHandler) Send(c echo.Context) error {
	var req verifySendReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "email required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "lookup failed"})
	}
	if u.Verified {
		return c.JSON(http.StatusOK, echo.Map{"message": "already verified"})
	}

	code, err := verification.Issue(ctx, h.Codes, email)
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"message": "could not issue code"})
	}

	if h.Sender != nil {
		subject, body := notify.VerificationMessage(code)
		h.Sender.Send(ctx, email, subject, body, u.Name)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "verification code sent"})
}

// Confirm checks the code and flips the account's verified flag. The
// code is single-use; a correct confirmation burns it.
func (h *VerifyHandler) Confirm(c echo.Context) error {
	var req verifyConfirmReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	code := strings.TrimSpace(req.Code)
	if email == "" || code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "email and code required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "lookup failed"})
	}

	if err := verification.Confirm(ctx, h.Codes, email, code); err != nil {
		switch {
		case errors.Is(err, verification.ErrCodeExpired):
			return c.JSON(http.StatusGone, echo.Map{"message": "code expired, request a new one"})
		case errors.Is(err, verification.ErrCodeMismatch):
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "incorrect code"})
		default:
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"message": "verification unavailable"})
		}
	}

	if err := h.Users.MarkVerified(ctx, u.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not mark verified"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "account verified"})
}
