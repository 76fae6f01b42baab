package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lifelink/blood-donation-api/internal/model"
)

// AppointmentRepo provides access to the 'appointments' table.
// Appointments are created by users scheduling a visit or
// synthetically by the lifecycle manager when a request is fulfilled.
type AppointmentRepo struct{ DB *sql.DB }

func NewAppointmentRepo(db *sql.DB) *AppointmentRepo { return &AppointmentRepo{DB: db} }

const appointmentColumns = "id,user_id,donor_id,date,status,reason,created_at"

// AppointmentWithNames pairs an appointment with joined display names
// for list projections.
type AppointmentWithNames struct {
	model.Appointment
	UserName  *string
	UserEmail *string
	DonorName *string
}

// Create inserts an appointment and returns its ID.
func (r *AppointmentRepo) Create(ctx context.Context, a model.Appointment) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO appointments (user_id, donor_id, date, status, reason) VALUES (?,?,?,?,?)",
		a.UserID, a.DonorID, a.Date, a.Status, a.Reason)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// ListByUser returns the appointments belonging to a user, newest first.
func (r *AppointmentRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Appointment, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+appointmentColumns+" FROM appointments WHERE user_id=? ORDER BY date DESC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Appointment, 0)
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ListAll returns every appointment with user and donor names joined,
// newest first.
func (r *AppointmentRepo) ListAll(ctx context.Context) ([]AppointmentWithNames, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT a.id,a.user_id,a.donor_id,a.date,a.status,a.reason,a.created_at,u.name,u.email,d.name"+
			" FROM appointments a"+
			" LEFT JOIN users u ON u.id=a.user_id"+
			" LEFT JOIN donors d ON d.id=a.donor_id"+
			" ORDER BY a.date DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]AppointmentWithNames, 0)
	for rows.Next() {
		var (
			item            AppointmentWithNames
			userID, donorID sql.NullInt64
			uName, uEmail   sql.NullString
			dName           sql.NullString
		)
		if err := rows.Scan(&item.ID, &userID, &donorID, &item.Date, &item.Status,
			&item.Reason, &item.CreatedAt, &uName, &uEmail, &dName); err != nil {
			return nil, err
		}
		if userID.Valid {
			v := uint64(userID.Int64)
			item.UserID = &v
		}
		if donorID.Valid {
			v := uint64(donorID.Int64)
			item.DonorID = &v
		}
		if uName.Valid {
			item.UserName = &uName.String
		}
		if uEmail.Valid {
			item.UserEmail = &uEmail.String
		}
		if dName.Valid {
			item.DonorName = &dName.String
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// Reschedule moves a user's own appointment to a new date and marks it
// rescheduled. Returns ErrAppointmentNotFound when the appointment
// does not exist or belongs to another user.
func (r *AppointmentRepo) Reschedule(ctx context.Context, id, userID uint64, date time.Time, reason string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE appointments SET date=?, reason=?, status=? WHERE id=? AND user_id=?",
		date, reason, model.AppointmentRescheduled, id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrAppointmentNotFound
	}
	return err
}

// FindFulfilledForDonorSince returns the first appointment for the
// donor with status fulfilled and a date at or after the given moment.
// The lifecycle manager uses this lookup-then-create pattern for
// same-day deduplication.
func (r *AppointmentRepo) FindFulfilledForDonorSince(ctx context.Context, donorID uint64, since time.Time) (model.Appointment, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+appointmentColumns+" FROM appointments WHERE donor_id=? AND status=? AND date>=? LIMIT 1",
		donorID, model.AppointmentFulfilled, since)
	a, err := scanAppointment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Appointment{}, ErrAppointmentNotFound
	}
	return a, err
}

// CancelFulfilled flips a donor's fulfilled appointment dated at or
// after the given moment to cancelled, scoped to the resolved user
// (or to appointments with no user when userID is nil).
func (r *AppointmentRepo) CancelFulfilled(ctx context.Context, donorID uint64, userID *uint64, since time.Time) error {
	var (
		res sql.Result
		err error
	)
	if userID != nil {
		res, err = r.DB.ExecContext(ctx,
			"UPDATE appointments SET status=? WHERE donor_id=? AND user_id=? AND status=? AND date>=? LIMIT 1",
			model.AppointmentCancelled, donorID, *userID, model.AppointmentFulfilled, since)
	} else {
		res, err = r.DB.ExecContext(ctx,
			"UPDATE appointments SET status=? WHERE donor_id=? AND user_id IS NULL AND status=? AND date>=? LIMIT 1",
			model.AppointmentCancelled, donorID, model.AppointmentFulfilled, since)
	}
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrAppointmentNotFound
	}
	return err
}

// ListUpcomingBetween returns scheduled or rescheduled appointments
// dated inside the window, with user contact details joined. Used by
// the reminder job.
func (r *AppointmentRepo) ListUpcomingBetween(ctx context.Context, from, to time.Time) ([]AppointmentWithNames, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT a.id,a.user_id,a.donor_id,a.date,a.status,a.reason,a.created_at,u.name,u.email,NULL"+
			" FROM appointments a LEFT JOIN users u ON u.id=a.user_id"+
			" WHERE a.date>=? AND a.date<? AND a.status IN (?,?)",
		from, to, model.AppointmentScheduled, model.AppointmentRescheduled)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]AppointmentWithNames, 0)
	for rows.Next() {
		var (
			item            AppointmentWithNames
			userID, donorID sql.NullInt64
			uName, uEmail   sql.NullString
			dName           sql.NullString
		)
		if err := rows.Scan(&item.ID, &userID, &donorID, &item.Date, &item.Status,
			&item.Reason, &item.CreatedAt, &uName, &uEmail, &dName); err != nil {
			return nil, err
		}
		if userID.Valid {
			v := uint64(userID.Int64)
			item.UserID = &v
		}
		if donorID.Valid {
			v := uint64(donorID.Int64)
			item.DonorID = &v
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

// CountAll returns the total number of appointments.
func (r *AppointmentRepo) CountAll(ctx context.Context) (uint64, error) {
	var n uint64
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM appointments").Scan(&n)
	return n, err
}

// CountFulfilledBetween returns the number of fulfilled appointments
// dated inside the window. Feeds the "donations today" statistic.
func (r *AppointmentRepo) CountFulfilledBetween(ctx context.Context, from, to time.Time) (uint64, error) {
	var n uint64
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM appointments WHERE status=? AND date>=? AND date<?",
		model.AppointmentFulfilled, from, to).Scan(&n)
	return n, err
}

// FulfilledCountByDonor aggregates fulfilled appointments per donor.
// The matching heuristic consumes this as donations-this-year input.
func (r *AppointmentRepo) FulfilledCountByDonor(ctx context.Context) (map[uint64]uint32, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT donor_id, COUNT(*) FROM appointments WHERE status=? AND donor_id IS NOT NULL GROUP BY donor_id",
		model.AppointmentFulfilled)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[uint64]uint32)
	for rows.Next() {
		var (
			donorID uint64
			n       uint32
		)
		if err := rows.Scan(&donorID, &n); err != nil {
			return nil, err
		}
		counts[donorID] = n
	}
	return counts, rows.Err()
}

func scanAppointment(row rowScanner) (model.Appointment, error) {
	var (
		a               model.Appointment
		userID, donorID sql.NullInt64
	)
	err := row.Scan(&a.ID, &userID, &donorID, &a.Date, &a.Status, &a.Reason, &a.CreatedAt)
	if err != nil {
		return model.Appointment{}, err
	}
	if userID.Valid {
		v := uint64(userID.Int64)
		a.UserID = &v
	}
	if donorID.Valid {
		v := uint64(donorID.Int64)
		a.DonorID = &v
	}
	return a, nil
}
