package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserMock(t *testing.T) (*UserRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewUserRepo(db), mock
}

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "username", "email", "password_hash", "email_confirmed", "is_admin", "created_at",
	})
}

func TestCreateNormalizesEmail(t *testing.T) {
	repo, mock := newUserMock(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("미미", "meme@naver.com", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	id, err := repo.Create(context.Background(), "미미", "  MeMe@Naver.com ", "SomeVali@123", 4)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)
}

func TestCreateDuplicateEmail(t *testing.T) {
	repo, mock := newUserMock(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("미미", "meme@naver.com", sqlmock.AnyArg()).
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'meme@naver.com' for key 'users.email'"))

	_, err := repo.Create(context.Background(), "미미", "meme@naver.com", "SomeVali@123", 4)
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestGetByIDNotFound(t *testing.T) {
	repo, mock := newUserMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + userColumns + " FROM users WHERE id=?")).
		WithArgs(uint64(3)).
		WillReturnRows(userRows())

	_, err := repo.GetByID(context.Background(), 3)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestGetByEmail(t *testing.T) {
	repo, mock := newUserMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + userColumns + " FROM users WHERE email=?")).
		WithArgs("meme@naver.com").
		WillReturnRows(userRows().AddRow(1, "미미", "meme@naver.com", "$2a$hash", true, false, time.Now()))

	u, err := repo.GetByEmail(context.Background(), "MeMe@naver.com")
	require.NoError(t, err)
	assert.Equal(t, "미미", u.Username)
	assert.True(t, u.EmailConfirmed)
}

func TestWithdrawCascadesInOneTransaction(t *testing.T) {
	repo, mock := newUserMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE messages SET author_id=NULL WHERE author_id=?")).
		WithArgs(uint64(1)).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM messages WHERE user_id=?")).
		WithArgs(uint64(1)).WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM refresh_tokens WHERE user_id=?")).
		WithArgs(uint64(1)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id=?")).
		WithArgs(uint64(1)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Withdraw(context.Background(), 1))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithdrawUnknownUserRollsBack(t *testing.T) {
	repo, mock := newUserMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE messages SET author_id=NULL WHERE author_id=?")).
		WithArgs(uint64(9)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM messages WHERE user_id=?")).
		WithArgs(uint64(9)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM refresh_tokens WHERE user_id=?")).
		WithArgs(uint64(9)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id=?")).
		WithArgs(uint64(9)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Withdraw(context.Background(), 9)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
