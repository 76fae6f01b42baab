package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/lifelink/blood-donation-api/internal/model"
)

// RequestRepo provides access to the 'requests' table.
type RequestRepo struct{ DB *sql.DB }

func NewRequestRepo(db *sql.DB) *RequestRepo { return &RequestRepo{DB: db} }

const requestColumns = "id,requester_name,requester_email,blood_group_needed,quantity,status,fulfilled_by,created_at,updated_at"

// RequestWithDonor pairs a request with the name of the donor credited
// with its fulfillment, when one is set. Used by list projections so
// clients do not need a second round trip.
type RequestWithDonor struct {
	model.Request
	FulfilledByName *string
}

// Create inserts a new request in the pending state and returns it.
func (r *RequestRepo) Create(ctx context.Context, name, email, bloodGroup string, quantity uint32) (model.Request, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO requests (requester_name, requester_email, blood_group_needed, quantity, status) VALUES (?,?,?,?,?)",
		name, email, bloodGroup, quantity, model.RequestPending)
	if err != nil {
		return model.Request{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Request{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID fetches a request by id. Returns ErrRequestNotFound when the
// id does not resolve.
func (r *RequestRepo) GetByID(ctx context.Context, id uint64) (model.Request, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+requestColumns+" FROM requests WHERE id=? LIMIT 1", id)
	req, err := scanRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Request{}, ErrRequestNotFound
	}
	return req, err
}

// List returns all requests with the fulfilling donor's name joined in,
// newest first.
func (r *RequestRepo) List(ctx context.Context) ([]RequestWithDonor, error) {
	return r.listJoined(ctx,
		"SELECT r.id,r.requester_name,r.requester_email,r.blood_group_needed,r.quantity,r.status,r.fulfilled_by,r.created_at,r.updated_at,d.name"+
			" FROM requests r LEFT JOIN donors d ON d.id=r.fulfilled_by ORDER BY r.created_at DESC")
}

// ListByEmail returns the requests raised by the given requester email.
func (r *RequestRepo) ListByEmail(ctx context.Context, email string) ([]RequestWithDonor, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.listJoined(ctx,
		"SELECT r.id,r.requester_name,r.requester_email,r.blood_group_needed,r.quantity,r.status,r.fulfilled_by,r.created_at,r.updated_at,d.name"+
			" FROM requests r LEFT JOIN donors d ON d.id=r.fulfilled_by WHERE r.requester_email=? ORDER BY r.created_at DESC",
		email)
}

// ListFulfilledBetween returns requests that are fulfilled and were
// created or last updated inside the given window. Used by the
// "fulfilled today" projection.
func (r *RequestRepo) ListFulfilledBetween(ctx context.Context, from, to time.Time) ([]RequestWithDonor, error) {
	return r.listJoined(ctx,
		"SELECT r.id,r.requester_name,r.requester_email,r.blood_group_needed,r.quantity,r.status,r.fulfilled_by,r.created_at,r.updated_at,d.name"+
			" FROM requests r LEFT JOIN donors d ON d.id=r.fulfilled_by"+
			" WHERE r.status=? AND ((r.updated_at>=? AND r.updated_at<?) OR (r.created_at>=? AND r.created_at<?))"+
			" ORDER BY r.updated_at DESC",
		model.RequestFulfilled, from, to, from, to)
}

// UpdateStatus persists the new status and, when a donor id is given,
// the fulfilled_by reference. It does not inspect the prior state;
// that is the lifecycle manager's job.
func (r *RequestRepo) UpdateStatus(ctx context.Context, id uint64, status string, fulfilledBy *uint64) error {
	var (
		res sql.Result
		err error
	)
	if fulfilledBy != nil {
		res, err = r.DB.ExecContext(ctx,
			"UPDATE requests SET status=?, fulfilled_by=? WHERE id=?", status, *fulfilledBy, id)
	} else {
		res, err = r.DB.ExecContext(ctx,
			"UPDATE requests SET status=? WHERE id=?", status, id)
	}
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		// RowsAffected is zero both for a missing row and for a no-op
		// update, so double-check existence before reporting not found.
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return getErr
		}
	}
	return err
}

// Delete removes a request permanently. No cascading effect on donors
// or appointments.
func (r *RequestRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM requests WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrRequestNotFound
	}
	return err
}

// CountByStatus returns the number of requests in the given status.
func (r *RequestRepo) CountByStatus(ctx context.Context, status string) (uint64, error) {
	var n uint64
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM requests WHERE status=?", status).Scan(&n)
	return n, err
}

func (r *RequestRepo) listJoined(ctx context.Context, query string, args ...any) ([]RequestWithDonor, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]RequestWithDonor, 0)
	for rows.Next() {
		var (
			item        RequestWithDonor
			fulfilledBy sql.NullInt64
			donorName   sql.NullString
		)
		if err := rows.Scan(&item.ID, &item.RequesterName, &item.RequesterEmail,
			&item.BloodGroupNeeded, &item.Quantity, &item.Status,
			&fulfilledBy, &item.CreatedAt, &item.UpdatedAt, &donorName); err != nil {
			return nil, err
		}
		if fulfilledBy.Valid {
			v := uint64(fulfilledBy.Int64)
			item.FulfilledBy = &v
		}
		if donorName.Valid {
			item.FulfilledByName = &donorName.String
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func scanRequest(row rowScanner) (model.Request, error) {
	var (
		req         model.Request
		fulfilledBy sql.NullInt64
	)
	err := row.Scan(&req.ID, &req.RequesterName, &req.RequesterEmail,
		&req.BloodGroupNeeded, &req.Quantity, &req.Status,
		&fulfilledBy, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return model.Request{}, err
	}
	if fulfilledBy.Valid {
		v := uint64(fulfilledBy.Int64)
		req.FulfilledBy = &v
	}
	return req, nil
}
