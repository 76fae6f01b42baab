package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// TokenRepo manages refresh token sessions in the 'refresh_tokens'
// table. Only the SHA-256 hash of a token ever reaches this layer;
// the raw value stays with the client. A session dies either by
// expiry or by revocation, and a dead session is reported as
// ErrRefreshTokenInvalid without saying which.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// StoreRefresh opens a session: one row per issued refresh token.
func (r *TokenRepo) StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES (?,?,?)",
		userID, tokenHash, exp)
	return err
}

// ValidateRefresh resolves a token hash to its owning user. Expiry
// and revocation are enforced in the query itself, against the
// database clock, so a stale application clock cannot resurrect a
// dead session. Dead or unknown hashes yield ErrRefreshTokenInvalid.
func (r *TokenRepo) ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error) {
	var userID uint64
	err := r.DB.QueryRowContext(ctx,
		"SELECT user_id FROM refresh_tokens"+
			" WHERE token_hash=? AND revoked_at IS NULL AND expires_at>UTC_TIMESTAMP()"+
			" LIMIT 1",
		tokenHash).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrRefreshTokenInvalid
	}
	return userID, err
}

// RevokeByHash closes the session for one token. Idempotent: revoking
// an unknown or already revoked hash is not an error, so logout can
// be retried safely.
func (r *TokenRepo) RevokeByHash(ctx context.Context, tokenHash string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=UTC_TIMESTAMP() WHERE token_hash=? AND revoked_at IS NULL",
		tokenHash)
	return err
}

// RevokeAllForUser closes every live session a user holds and returns
// how many were closed. Backs the logout-everywhere endpoint.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID uint64) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=UTC_TIMESTAMP() WHERE user_id=? AND revoked_at IS NULL",
		userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
