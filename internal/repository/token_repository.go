package repository

import (
	"context"
	"database/sql"
	"time"
)

// TokenRepo persists the single refresh token each user may hold.
// Rows are keyed by a UNIQUE user_id, so a login replaces the value
// in place instead of accumulating sessions, and reuse detection is
// one equality lookup.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// Upsert stores the refresh token hash for a user, overwriting any
// previous value. Used on login, where the old session (if any) is
// unconditionally replaced.
func (r *TokenRepo) Upsert(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES (?,?,?)
		 ON DUPLICATE KEY UPDATE token_hash=VALUES(token_hash), expires_at=VALUES(expires_at)`,
		userID, tokenHash, exp)
	return err
}

// Rotate atomically swaps the stored hash for a user's row, matched
// by the presented (old) hash. The single UPDATE is the
// compare-and-swap that makes rotation single-use: of two concurrent
// calls presenting the same stale hash, only the first matches a
// row; the second sees zero rows affected and gets ErrTokenReuse.
func (r *TokenRepo) Rotate(ctx context.Context, oldHash, newHash string, exp time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET token_hash=?, expires_at=? WHERE token_hash=?",
		newHash, exp, oldHash)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTokenReuse
	}
	return nil
}

// DeleteForUser removes a user's token row, ending the session.
func (r *TokenRepo) DeleteForUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM refresh_tokens WHERE user_id=?", userID)
	return err
}
