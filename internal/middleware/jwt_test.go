package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/5nonymous/money-for-rabbit/internal/model"
	"github.com/5nonymous/money-for-rabbit/internal/utils"
)

const testSecret = "middleware-test-secret"

func runMiddleware(mw echo.MiddlewareFunc, authorization string) (echo.Context, *httptest.ResponseRecorder, bool) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	reached := false
	_ = mw(func(c echo.Context) error {
		reached = true
		return c.NoContent(http.StatusOK)
	})(c)
	return c, rec, reached
}

func TestJWTAuthPopulatesIdentity(t *testing.T) {
	access, err := utils.NewAccessToken(testSecret, 7, "미미", time.Minute)
	require.NoError(t, err)

	c, rec, reached := runMiddleware(JWTAuth(testSecret), "Bearer "+access.Token)
	assert.True(t, reached)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint64(7), RequesterID(c))
	assert.Equal(t, "미미", c.Get(CtxUsername))
}

func TestJWTAuthRejectsMissingHeader(t *testing.T) {
	_, rec, reached := runMiddleware(JWTAuth(testSecret), "")
	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthRejectsForeignSignature(t *testing.T) {
	access, err := utils.NewAccessToken("some-other-secret", 7, "미미", time.Minute)
	require.NoError(t, err)

	_, rec, reached := runMiddleware(JWTAuth(testSecret), "Bearer "+access.Token)
	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthRejectsExpiredToken(t *testing.T) {
	access, err := utils.NewAccessToken(testSecret, 7, "미미", -time.Minute)
	require.NoError(t, err)

	_, rec, reached := runMiddleware(JWTAuth(testSecret), "Bearer "+access.Token)
	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshJWTKeepsRawToken(t *testing.T) {
	refresh, err := utils.NewRefreshToken(testSecret, 7, time.Hour)
	require.NoError(t, err)

	c, rec, reached := runMiddleware(RefreshJWT(testSecret), "Bearer "+refresh.Raw)
	assert.True(t, reached)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint64(7), RequesterID(c))
	assert.Equal(t, refresh.Raw, c.Get(CtxRefreshRaw))
}

// fakeLookup returns a canned user for RequireAdmin tests.
type fakeLookup struct {
	user model.User
	err  error
}

func (f fakeLookup) GetByID(context.Context, uint64) (model.User, error) {
	return f.user, f.err
}

func runAdmin(lookup AdminLookup, uid uint64) (*httptest.ResponseRecorder, bool) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if uid != 0 {
		c.Set(CtxUserID, uid)
	}

	reached := false
	_ = RequireAdmin(lookup)(func(c echo.Context) error {
		reached = true
		return c.NoContent(http.StatusOK)
	})(c)
	return rec, reached
}

func TestRequireAdminAllowsFlaggedAccount(t *testing.T) {
	rec, reached := runAdmin(fakeLookup{user: model.User{ID: 1, IsAdmin: true}}, 1)
	assert.True(t, reached)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAdminRejectsRegularAccount(t *testing.T) {
	rec, reached := runAdmin(fakeLookup{user: model.User{ID: 1}}, 1)
	assert.False(t, reached)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireAdminRejectsUnknownAccount(t *testing.T) {
	rec, reached := runAdmin(fakeLookup{err: errors.New("no rows")}, 1)
	assert.False(t, reached)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireAdminRejectsAnonymous(t *testing.T) {
	rec, reached := runAdmin(fakeLookup{user: model.User{ID: 1, IsAdmin: true}}, 0)
	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
