package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/5nonymous/money-for-rabbit/internal/model"
	"github.com/5nonymous/money-for-rabbit/internal/policy"
)

// AdminLookup resolves the requester's user record so the admin flag
// can be checked. Satisfied by *repository.UserRepo.
type AdminLookup interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// RequireAdmin loads the authenticated user and rejects the request
// unless the account carries the admin flag. The flag lives in the
// database rather than the token claims, so a demoted admin loses
// access as soon as the row changes. Must run after JWTAuth.
func RequireAdmin(users AdminLookup) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			uid := RequesterID(c)
			if uid == 0 {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()

			u, err := users.GetByID(ctx, uid)
			if err != nil || !policy.IsAdmin(u) {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "permission denied"})
			}
			return next(c)
		}
	}
}
