package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/5nonymous/money-for-rabbit/internal/config"
	"github.com/5nonymous/money-for-rabbit/internal/logger"
)

func runRateLimit(cfg config.RateLimit) (*httptest.ResponseRecorder, bool) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/user/login", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	reached := false
	_ = RateLimit(cfg, nil, logger.Nop())(func(c echo.Context) error {
		reached = true
		return c.NoContent(http.StatusOK)
	})(c)
	return rec, reached
}

func TestRateLimitDisabledPassesThrough(t *testing.T) {
	cfg := config.RateLimit{Enabled: false}
	rec, reached := runRateLimit(cfg)
	assert.True(t, reached)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
}

func TestRateLimitWithoutRedisPassesThrough(t *testing.T) {
	// Redis unreachable at startup: the limiter degrades instead of
	// blocking logins.
	cfg := config.RateLimit{
		Enabled:        true,
		Capacity:       10,
		RefillInterval: 3 * time.Second,
		TTL:            10 * time.Minute,
	}
	rec, reached := runRateLimit(cfg)
	assert.True(t, reached)
	assert.Equal(t, http.StatusOK, rec.Code)
}
