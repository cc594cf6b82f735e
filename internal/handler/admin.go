package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/5nonymous/money-for-rabbit/internal/repository"
)

// AdminHandler implements the moderation endpoints. Route-level
// access control (RequireAdmin) already ran by the time these
// handlers execute.
type AdminHandler struct {
	Log      zerolog.Logger
	Users    *repository.UserRepo
	Messages *repository.MessageRepo
}

func NewAdminHandler(log zerolog.Logger, u *repository.UserRepo, m *repository.MessageRepo) *AdminHandler {
	return &AdminHandler{Log: log, Users: u, Messages: m}
}

// Stats returns the dashboard counters.
func (h *AdminHandler) Stats(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	userCount, err := h.Users.Count(ctx)
	if err != nil {
		h.Log.Error().Err(err).Msg("admin stats: user count failed")
		return Fail(c, http.StatusInternalServerError, msgInternal)
	}
	messageCount, err := h.Messages.Count(ctx)
	if err != nil {
		h.Log.Error().Err(err).Msg("admin stats: message count failed")
		return Fail(c, http.StatusInternalServerError, msgInternal)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"user_count":    userCount,
		"message_count": messageCount,
	})
}

type adminUserResp struct {
	ID             uint64 `json:"id"`
	Username       string `json:"username"`
	Email          string `json:"email"`
	EmailConfirmed bool   `json:"email_confirmed"`
	IsAdmin        bool   `json:"is_admin"`
}

// ListUsers returns every account for the moderation panel.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Users.List(ctx)
	if err != nil {
		h.Log.Error().Err(err).Msg("admin users: list failed")
		return Fail(c, http.StatusInternalServerError, msgInternal)
	}

	out := make([]adminUserResp, 0, len(users))
	for _, u := range users {
		out = append(out, adminUserResp{
			ID:             u.ID,
			Username:       u.Username,
			Email:          u.Email,
			EmailConfirmed: u.EmailConfirmed,
			IsAdmin:        u.IsAdmin,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"users": out})
}

// DeleteMessage removes a reported message outright.
func (h *AdminHandler) DeleteMessage(c echo.Context) error {
	mid, err := strconv.ParseUint(c.Param("message_id"), 10, 64)
	if err != nil {
		return Fail(c, http.StatusNotFound, msgMessageNotFound)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Messages.Delete(ctx, mid); err != nil {
		if errors.Is(err, repository.ErrMessageNotFound) {
			return Fail(c, http.StatusNotFound, msgMessageNotFound)
		}
		h.Log.Error().Err(err).Msg("admin: message delete failed")
		return Fail(c, http.StatusInternalServerError, msgInternal)
	}
	return c.NoContent(http.StatusNoContent)
}
