package middleware // middleware provides shared request processing for handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/5nonymous/money-for-rabbit/internal/utils"
)

// bearerScheme is the fixed authorization prefix; the raw token value
// starts right after these seven characters.
const bearerScheme = "Bearer "

// Context keys populated by the token middleware.
const (
	CtxUserID     = "user_id"
	CtxUsername   = "username"
	CtxRefreshRaw = "refresh_raw"
)

// JWTAuth validates a Bearer access token and injects the subject id
// and username claims into the request context. Signature and expiry
// are checked here, once, before any handler runs; handlers trust
// CtxUserID afterwards.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, bearerScheme) {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := auth[len(bearerScheme):]

			claims, err := utils.ParseToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
			}
			uid, ok := utils.SubjectID(claims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}

			c.Set(CtxUserID, uid)
			if name, ok := claims["username"].(string); ok {
				c.Set(CtxUsername, name)
			}
			return next(c)
		}
	}
}

// RefreshJWT validates a Bearer refresh token's signature and expiry
// before the rotation handler runs. The raw token value is kept in
// the context because rotation needs it for the store lookup; the
// handler never re-parses the header.
func RefreshJWT(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, bearerScheme) {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := auth[len(bearerScheme):]

			claims, err := utils.ParseToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
			}
			uid, ok := utils.SubjectID(claims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}

			c.Set(CtxUserID, uid)
			c.Set(CtxRefreshRaw, raw)
			return next(c)
		}
	}
}

// RequesterID returns the authenticated user id stored by JWTAuth or
// RefreshJWT, or 0 when the request is unauthenticated.
func RequesterID(c echo.Context) uint64 {
	if v, ok := c.Get(CtxUserID).(uint64); ok {
		return v
	}
	return 0
}
