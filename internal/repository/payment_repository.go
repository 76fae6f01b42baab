package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/lifelink/blood-donation-api/internal/model"
)

// PaymentRepo provides access to the 'payments' table.
type PaymentRepo struct{ DB *sql.DB }

func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{DB: db} }

// ExistsSince reports whether the user already has a payment of the
// same amount recorded at or after the given moment. The confirmation
// handler uses this for per-day idempotency before inserting.
func (r *PaymentRepo) ExistsSince(ctx context.Context, userID uint64, amount float64, since time.Time) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM payments WHERE user_id=? AND amount=? AND created_at>=?",
		userID, amount, since).Scan(&n)
	return n > 0, err
}

// Create records a confirmed payment.
func (r *PaymentRepo) Create(ctx context.Context, paymentID string, userID uint64, amount float64) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO payments (payment_id, user_id, amount) VALUES (?,?,?)",
		paymentID, userID, amount)
	return err
}

// PaymentWithUser pairs a payment with the payer's display details.
type PaymentWithUser struct {
	model.Payment
	UserName  *string
	UserEmail *string
}

// ListAll returns every payment with payer details joined, newest first.
func (r *PaymentRepo) ListAll(ctx context.Context) ([]PaymentWithUser, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT p.id,p.payment_id,p.user_id,p.amount,p.created_at,u.name,u.email"+
			" FROM payments p LEFT JOIN users u ON u.id=p.user_id ORDER BY p.created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]PaymentWithUser, 0)
	for rows.Next() {
		var (
			item          PaymentWithUser
			uName, uEmail sql.NullString
		)
		if err := rows.Scan(&item.ID, &item.PaymentID, &item.UserID, &item.Amount,
			&item.CreatedAt, &uName, &uEmail); err != nil {
			return nil, err
		}
		if uName.Valid {
			item.UserName = &uName.String
		}
		if uEmail.Valid {
			item.UserEmail = &uEmail.String
		}
		out = append(out, item)
	}
	return out, rows.Err()
}
