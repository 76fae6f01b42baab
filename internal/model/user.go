package model

import "time"

// User represents an account record as stored in the `users` table.
// Accounts are created unverified and must exchange a time-boxed
// numeric code before they can log in.  The json tags are omitted
// because these structs are used internally by the repository layer;
// handlers define separate response types with appropriate JSON tags.
//
// Fields:
//  ID           primary key identifier of the user.
//  Name         display name provided at registration.
//  Email        unique email address.
//  PasswordHash bcrypt hashed password.
//  Role         role name (DONOR or ADMIN).
//  Verified     whether the account has confirmed a verification code.
//  CreatedAt    timestamp of creation.
//  UpdatedAt    timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Name         string    // users.name
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Role         string    // users.role
	Verified     bool      // users.verified
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to a user and carries metadata for expiry and
// revocation.  The plain token is never stored; only its SHA-256 hash.
//
// Fields:
//  ID        primary key identifier.
//  UserID    owner of the token.
//  TokenHash SHA-256 hex digest of the token value.
//  ExpiresAt expiration timestamp of the token.
//  RevokedAt when the token was revoked (nil if still active).
//  CreatedAt timestamp of creation.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
