package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lifelink/blood-donation-api/internal/repository"
)

// FeedbackHandler accepts rated free-text feedback from users.
type FeedbackHandler struct {
	Feedback *repository.FeedbackRepo
}

func NewFeedbackHandler(f *repository.FeedbackRepo) *FeedbackHandler {
	if f == nil {
		panic("nil repository passed to NewFeedbackHandler")
	}
	return &FeedbackHandler{Feedback: f}
}

type feedbackReq struct {
	Message string `json:"message"`
	Rating  uint8  `json:"rating"`
}

type feedbackPart struct {
	ID        uint64    `json:"id"`
	UserID    uint64    `json:"user_id"`
	UserName  *string   `json:"user_name,omitempty"`
	Message   string    `json:"message"`
	Rating    uint8     `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}

// Submit stores one feedback entry for the authenticated user.
func (h *FeedbackHandler) Submit(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	var req feedbackReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "message required"})
	}
	if req.Rating < 1 || req.Rating > 5 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "rating must be between 1 and 5"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	id, err := h.Feedback.Create(ctx, uid, req.Message, req.Rating)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "submit feedback failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "feedback submitted", "id": id})
}

// List returns every feedback entry with submitter names, newest
// first. Admin only.
func (h *FeedbackHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	rows, err := h.Feedback.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "list feedback failed"})
	}
	out := make([]feedbackPart, 0, len(rows))
	for _, r := range rows {
		out = append(out, feedbackPart{
			ID:        r.ID,
			UserID:    r.UserID,
			UserName:  r.UserName,
			Message:   r.Message,
			Rating:    r.Rating,
			CreatedAt: r.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"feedback": out})
}
