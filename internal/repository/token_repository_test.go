package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*TokenRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewTokenRepo(db), mock
}

func TestUpsertReplacesExistingRow(t *testing.T) {
	repo, mock := newMock(t)
	exp := time.Now().UTC().Add(24 * time.Hour)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO refresh_tokens")).
		WithArgs(uint64(1), "hash-r1", exp).
		WillReturnResult(sqlmock.NewResult(1, 2)) // ON DUPLICATE KEY UPDATE reports 2

	require.NoError(t, repo.Upsert(context.Background(), 1, "hash-r1", exp))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRotateSwapsCurrentValue(t *testing.T) {
	repo, mock := newMock(t)
	exp := time.Now().UTC().Add(24 * time.Hour)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE refresh_tokens SET token_hash=?, expires_at=? WHERE token_hash=?")).
		WithArgs("hash-r1", exp, "hash-r0").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Rotate(context.Background(), "hash-r0", "hash-r1", exp))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRotateDetectsReuse(t *testing.T) {
	repo, mock := newMock(t)
	exp := time.Now().UTC().Add(24 * time.Hour)

	// The stale hash matches no row: it was already rotated away.
	mock.ExpectExec(regexp.QuoteMeta("UPDATE refresh_tokens SET token_hash=?, expires_at=? WHERE token_hash=?")).
		WithArgs("hash-r2", exp, "hash-r0").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Rotate(context.Background(), "hash-r0", "hash-r2", exp)
	assert.ErrorIs(t, err, ErrTokenReuse)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteForUser(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM refresh_tokens WHERE user_id=?")).
		WithArgs(uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.DeleteForUser(context.Background(), 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}
