package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lifelink/blood-donation-api/internal/model"
)

// DonorRepo provides access to the 'donors' table. Donors are kept
// separate from user accounts; the registry is maintained by
// administrators and referenced from requests and appointments by
// plain id columns without enforced foreign keys.
type DonorRepo struct{ DB *sql.DB }

func NewDonorRepo(db *sql.DB) *DonorRepo { return &DonorRepo{DB: db} }

const donorColumns = "id,name,email,phone,blood_group,address,donations,last_donation_date,created_at,updated_at"

// List returns all donors ordered by name.
func (r *DonorRepo) List(ctx context.Context) ([]model.Donor, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+donorColumns+" FROM donors ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	donors := make([]model.Donor, 0)
	for rows.Next() {
		d, err := scanDonor(rows)
		if err != nil {
			return nil, err
		}
		donors = append(donors, d)
	}
	return donors, rows.Err()
}

// GetByID fetches a donor by id. Returns ErrDonorNotFound when the id
// does not resolve.
func (r *DonorRepo) GetByID(ctx context.Context, id uint64) (model.Donor, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+donorColumns+" FROM donors WHERE id=? LIMIT 1", id)
	d, err := scanDonor(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Donor{}, ErrDonorNotFound
	}
	return d, err
}

// Create inserts a donor and returns its ID. Donations start at zero.
func (r *DonorRepo) Create(ctx context.Context, d model.Donor) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO donors (name, email, phone, blood_group, address, donations) VALUES (?,?,?,?,?,0)",
		d.Name, d.Email, d.Phone, d.BloodGroup, d.Address)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Update overwrites a donor's contact fields. The donations counter
// and last donation date are owned by the lifecycle manager and are
// not touched here.
func (r *DonorRepo) Update(ctx context.Context, id uint64, d model.Donor) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE donors SET name=?, email=?, phone=?, blood_group=?, address=? WHERE id=?",
		d.Name, d.Email, d.Phone, d.BloodGroup, d.Address, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrDonorNotFound
	}
	return err
}

// UpdateDonationStats persists the donations counter and last donation
// date previously read by the caller. This is deliberately a plain
// read-modify-write: concurrent fulfillments can lose an increment,
// which matches the accepted consistency model.
func (r *DonorRepo) UpdateDonationStats(ctx context.Context, id uint64, donations uint32, last time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE donors SET donations=?, last_donation_date=? WHERE id=?",
		donations, last, id)
	return err
}

// Delete removes a donor permanently.
func (r *DonorRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM donors WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrDonorNotFound
	}
	return err
}

// CountAll returns the total number of registered donors.
func (r *DonorRepo) CountAll(ctx context.Context) (uint64, error) {
	var n uint64
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM donors").Scan(&n)
	return n, err
}

type rowScanner interface{ Scan(dest ...any) error }

func scanDonor(row rowScanner) (model.Donor, error) {
	var (
		d    model.Donor
		last sql.NullTime
	)
	err := row.Scan(&d.ID, &d.Name, &d.Email, &d.Phone, &d.BloodGroup, &d.Address,
		&d.Donations, &last, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return model.Donor{}, err
	}
	if last.Valid {
		t := last.Time
		d.LastDonationDate = &t
	}
	return d, nil
}
