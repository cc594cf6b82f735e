// Package router wires the HTTP surface: which handler answers which
// path, and which middleware guards it.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/5nonymous/money-for-rabbit/internal/config"
	"github.com/5nonymous/money-for-rabbit/internal/handler"
	"github.com/5nonymous/money-for-rabbit/internal/middleware"
)

// Handlers bundles everything RegisterRoutes needs.
type Handlers struct {
	Auth    *handler.AuthHandler
	User    *handler.UserHandler
	Message *handler.MessageHandler
	Admin   *handler.AdminHandler
}

// RegisterRoutes attaches all routes to the Echo instance.
//
// Token middleware is applied per route group: access-token routes
// verify signature and expiry up front, and only the refresh route
// additionally hits the store (inside the handler) for the rotation
// check. The tighter rate limit sits on the three credential
// endpoints.
func RegisterRoutes(e *echo.Echo, h Handlers, cfg config.Config, rdb *redis.Client, log zerolog.Logger) {
	e.Use(middleware.RequestLogger(log))

	e.GET("/healthz", handler.Health)

	api := e.Group("/api")
	limited := middleware.RateLimit(cfg.RateLimit, rdb, log)

	// Credential endpoints: no session required.
	api.POST("/user/register", h.Auth.Register, limited)
	api.POST("/user/login", h.Auth.Login, limited)
	api.POST("/user/refresh", h.Auth.Refresh, limited, middleware.RefreshJWT(cfg.JWTSecret))
	api.GET("/confirm-user/:user_id/:hash", h.Auth.Confirm)

	// Public profile and message detail: shareable links.
	api.GET("/user/:user_id", h.User.GetProfile)
	api.GET("/user/:user_id/messages/:message_id", h.Message.Detail)

	// Routes below require a valid access token.
	authed := api.Group("", middleware.JWTAuth(cfg.JWTSecret))
	authed.POST("/user/logout", h.Auth.Logout)
	authed.PUT("/user/:user_id", h.User.UpdateProfile)
	authed.DELETE("/user/withdraw", h.User.Withdraw)
	authed.GET("/user/:user_id/messages", h.Message.List)
	authed.POST("/user/:user_id/messages", h.Message.Write)

	// Moderation panel: access token + admin flag.
	admin := api.Group("/admin", middleware.JWTAuth(cfg.JWTSecret), middleware.RequireAdmin(h.Admin.Users))
	admin.GET("/stats", h.Admin.Stats)
	admin.GET("/users", h.Admin.ListUsers)
	admin.DELETE("/messages/:message_id", h.Admin.DeleteMessage)
}
