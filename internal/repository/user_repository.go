package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/lifelink/blood-donation-api/internal/model"
	"github.com/lifelink/blood-donation-api/internal/utils"
)

// UserRepo provides access to the 'users' table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

var ErrEmailExists = errors.New("email already exists")

const userColumns = "id,name,email,password_hash,role,verified,created_at,updated_at"

// Create inserts an unverified user and returns its ID.
func (r *UserRepo) Create(ctx context.Context, name, email, password, role string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name, email, password_hash, role, verified) VALUES (?,?,?,?,0)",
		name, email, hash, role)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.scanOne(ctx, "SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.scanOne(ctx, "SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
}

// MarkVerified flips the verified flag after a successful code exchange.
func (r *UserRepo) MarkVerified(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE users SET verified=1 WHERE id=?", id)
	return err
}

// CountAll returns the total number of user accounts.
func (r *UserRepo) CountAll(ctx context.Context) (uint64, error) {
	return r.count(ctx, "SELECT COUNT(*) FROM users")
}

// CountByRole returns the number of accounts holding the given role.
func (r *UserRepo) CountByRole(ctx context.Context, role string) (uint64, error) {
	return r.count(ctx, "SELECT COUNT(*) FROM users WHERE role=?", role)
}

// CountVerified returns the number of verified accounts.
func (r *UserRepo) CountVerified(ctx context.Context) (uint64, error) {
	return r.count(ctx, "SELECT COUNT(*) FROM users WHERE verified=1")
}

// ListVerifiedEmails returns the set of emails belonging to verified
// accounts, keyed by normalized email. Used by donor matching to mark
// donors whose email has a verified account behind it.
func (r *UserRepo) ListVerifiedEmails(ctx context.Context) (map[string]bool, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT email FROM users WHERE verified=1")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	verified := make(map[string]bool)
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, err
		}
		verified[strings.ToLower(email)] = true
	}
	return verified, rows.Err()
}

func (r *UserRepo) scanOne(ctx context.Context, query string, args ...any) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx, query, args...).
		Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Verified, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (r *UserRepo) count(ctx context.Context, query string, args ...any) (uint64, error) {
	var n uint64
	err := r.DB.QueryRowContext(ctx, query, args...).Scan(&n)
	return n, err
}
