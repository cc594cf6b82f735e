package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/5nonymous/money-for-rabbit/internal/config"
	"github.com/5nonymous/money-for-rabbit/internal/middleware"
	"github.com/5nonymous/money-for-rabbit/internal/policy"
	"github.com/5nonymous/money-for-rabbit/internal/repository"
)

const maxUsernameLen = 20

// UserHandler implements profile lookup/update and account
// withdrawal.
type UserHandler struct {
	Cfg      config.Config
	Log      zerolog.Logger
	Users    *repository.UserRepo
	Messages *repository.MessageRepo
}

func NewUserHandler(cfg config.Config, log zerolog.Logger, u *repository.UserRepo, m *repository.MessageRepo) *UserHandler {
	return &UserHandler{Cfg: cfg, Log: log, Users: u, Messages: m}
}

type updateReq struct {
	Username string `json:"username"`
}
type withdrawReq struct {
	Username string `json:"username"`
}

// GetProfile is public: anyone holding a profile link can see the
// display name and the total received so far.
func (h *UserHandler) GetProfile(c echo.Context) error {
	uid, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil {
		return Fail(c, http.StatusNotFound, msgUserNotFound)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return Fail(c, http.StatusNotFound, msgUserNotFound)
		}
		h.Log.Error().Err(err).Msg("profile: user lookup failed")
		return Fail(c, http.StatusInternalServerError, msgInternal)
	}
	total, err := h.Messages.TotalAmount(ctx, uid)
	if err != nil {
		h.Log.Error().Err(err).Msg("profile: total amount query failed")
		return Fail(c, http.StatusInternalServerError, msgInternal)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"user_info": echo.Map{
			"username":     u.Username,
			"total_amount": total,
		},
	})
}

// UpdateProfile changes the requester's own display name.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	uid, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil {
		return Fail(c, http.StatusNotFound, msgUserNotFound)
	}
	if !policy.IsSelf(middleware.RequesterID(c), uid) {
		return Fail(c, http.StatusForbidden, msgForbidden)
	}

	var req updateReq
	if err := c.Bind(&req); err != nil {
		return Fail(c, http.StatusBadRequest, msgInvalidBody)
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || utf8.RuneCountInString(req.Username) > maxUsernameLen {
		return Fail(c, http.StatusBadRequest, msgInvalidBody)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.UpdateUsername(ctx, uid, req.Username); err != nil {
		h.Log.Error().Err(err).Msg("profile: username update failed")
		return Fail(c, http.StatusInternalServerError, msgInternal)
	}
	return Success(c, http.StatusOK, fmt.Sprintf(msgNameChanged, req.Username))
}

// Withdraw deletes the requester's account. The body must repeat the
// current username as the re-confirmation step; everything owned by
// the account goes with it (refresh token, received messages) and
// authored messages become anonymous.
func (h *UserHandler) Withdraw(c echo.Context) error {
	uid := middleware.RequesterID(c)

	var req withdrawReq
	if err := c.Bind(&req); err != nil {
		return Fail(c, http.StatusBadRequest, msgInvalidBody)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return Fail(c, http.StatusNotFound, msgUserNotFound)
		}
		h.Log.Error().Err(err).Msg("withdraw: user lookup failed")
		return Fail(c, http.StatusInternalServerError, msgInternal)
	}
	if req.Username != u.Username {
		return Fail(c, http.StatusBadRequest, msgInvalidRequest)
	}

	if err := h.Users.Withdraw(ctx, uid); err != nil {
		h.Log.Error().Err(err).Uint64("user_id", uid).Msg("withdraw: cascade delete failed")
		return Fail(c, http.StatusInternalServerError, msgInternal)
	}
	return c.NoContent(http.StatusNoContent)
}
