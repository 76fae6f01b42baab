package repository

import (
	"context"
	"database/sql"

	"github.com/lifelink/blood-donation-api/internal/model"
)

// FeedbackRepo provides access to the 'feedback' table.
type FeedbackRepo struct{ DB *sql.DB }

func NewFeedbackRepo(db *sql.DB) *FeedbackRepo { return &FeedbackRepo{DB: db} }

// Create stores a feedback entry and returns its ID.
func (r *FeedbackRepo) Create(ctx context.Context, userID uint64, message string, rating uint8) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO feedback (user_id, message, rating) VALUES (?,?,?)",
		userID, message, rating)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// FeedbackWithUser pairs a feedback entry with the submitter's name.
type FeedbackWithUser struct {
	model.Feedback
	UserName *string
}

// ListAll returns every feedback entry, newest first.
func (r *FeedbackRepo) ListAll(ctx context.Context) ([]FeedbackWithUser, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT f.id,f.user_id,f.message,f.rating,f.created_at,u.name"+
			" FROM feedback f LEFT JOIN users u ON u.id=f.user_id ORDER BY f.created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]FeedbackWithUser, 0)
	for rows.Next() {
		var (
			item  FeedbackWithUser
			uName sql.NullString
		)
		if err := rows.Scan(&item.ID, &item.UserID, &item.Message, &item.Rating,
			&item.CreatedAt, &uName); err != nil {
			return nil, err
		}
		if uName.Valid {
			item.UserName = &uName.String
		}
		out = append(out, item)
	}
	return out, rows.Err()
}
