package model

import "time"

// User represents an application user record as stored in the
// `users` table. Each field corresponds to a column in the
// database. Handlers define separate response types with JSON tags;
// these structs stay internal to the repository layer.
//
// Fields:
//  ID             – primary key identifier of the user.
//  Username       – display name; mutable, not unique.
//  Email          – unique email address, immutable after registration.
//  PasswordHash   – bcrypt hashed password.
//  EmailConfirmed – whether the confirmation link was followed.
//  IsAdmin        – grants access to the moderation endpoints.
//  CreatedAt      – timestamp of registration.
type User struct {
	ID             uint64    // users.id
	Username       string    // users.username
	Email          string    // users.email
	PasswordHash   string    // users.password_hash
	EmailConfirmed bool      // users.email_confirmed
	IsAdmin        bool      // users.is_admin
	CreatedAt      time.Time // users.created_at
}

// RefreshToken models the single row a user may hold in the
// `refresh_tokens` table (UNIQUE user_id). The plain token is not
// stored; only its SHA-256 hash. The value is overwritten in place
// on every login and rotation, and the row is deleted when the
// owning user withdraws.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token (unique).
//  TokenHash – SHA-256 hex digest of the signed token value (unique).
//  ExpiresAt – expiration timestamp of the token.
//  CreatedAt – timestamp of first issuance.
type RefreshToken struct {
	ID        uint64    // refresh_tokens.id
	UserID    uint64    // refresh_tokens.user_id
	TokenHash string    // refresh_tokens.token_hash
	ExpiresAt time.Time // refresh_tokens.expires_at
	CreatedAt time.Time // refresh_tokens.created_at
}
