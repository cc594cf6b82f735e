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
	"github.com/5nonymous/money-for-rabbit/internal/queue"
	"github.com/5nonymous/money-for-rabbit/internal/repository"
	"github.com/5nonymous/money-for-rabbit/internal/utils"
)

// RegistrationNotifier dispatches the confirmation-mail event. The
// broker-backed implementation lives in internal/service; tests use a
// stub.
type RegistrationNotifier interface {
	PublishUserRegistered(ctx context.Context, ev queue.UserRegisteredEvent) error
}

// AuthHandler implements registration, email confirmation, login and
// refresh-token rotation.
type AuthHandler struct {
	Cfg    config.Config
	Log    zerolog.Logger
	Users  *repository.UserRepo
	Tokens *repository.TokenRepo
	Events RegistrationNotifier
}

func NewAuthHandler(cfg config.Config, log zerolog.Logger, u *repository.UserRepo, t *repository.TokenRepo, ev RegistrationNotifier) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Log: log, Users: u, Tokens: t, Events: ev}
}

type registerReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type tokenPairResp struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Register creates an unconfirmed account and dispatches the
// confirmation mail. The account cannot log in until the mailed link
// is followed.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return Fail(c, http.StatusBadRequest, msgInvalidBody)
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Username == "" || utf8.RuneCountInString(req.Username) > maxUsernameLen {
		return Fail(c, http.StatusBadRequest, msgInvalidBody)
	}
	if err := utils.ValidatePassword(req.Password); err != nil {
		return Fail(c, http.StatusBadRequest, err.Error())
	}
	if err := utils.ValidateEmail(req.Email); err != nil {
		return Fail(c, http.StatusBadRequest, err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Username, req.Email, req.Password, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return Fail(c, http.StatusBadRequest, msgEmailDuplicated)
		}
		h.Log.Error().Err(err).Msg("register: create user failed")
		return Fail(c, http.StatusInternalServerError, msgInternal)
	}

	// Fire-and-forget: a dead broker must not fail the registration.
	ev := queue.UserRegisteredEvent{
		UserID:       uid,
		Username:     req.Username,
		Email:        req.Email,
		ConfirmURL:   fmt.Sprintf("%s/%d/%s", h.Cfg.ConfirmBaseURL, uid, utils.DeriveConfirmationToken(req.Email)),
		RegisteredAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := h.Events.PublishUserRegistered(ctx, ev); err != nil {
		h.Log.Warn().Err(err).Uint64("user_id", uid).Msg("register: confirmation mail event not published")
	}

	return Success(c, http.StatusCreated, fmt.Sprintf(msgWelcome, req.Username))
}

// Login verifies credentials and the confirmation flag, then issues a
// fresh token pair. The refresh token row is replaced in place, so a
// new login always invalidates the previous session.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return Fail(c, http.StatusBadRequest, msgInvalidBody)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return Fail(c, http.StatusUnauthorized, msgAccountMismatch)
		}
		h.Log.Error().Err(err).Msg("login: user lookup failed")
		return Fail(c, http.StatusInternalServerError, msgInternal)
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return Fail(c, http.StatusUnauthorized, msgAccountMismatch)
	}
	if !u.EmailConfirmed {
		return Fail(c, http.StatusBadRequest, msgEmailNotConfirmed)
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Username, h.Cfg.AccessTTL)
	if err != nil {
		h.Log.Error().Err(err).Msg("login: access token signing failed")
		return Fail(c, http.StatusInternalServerError, msgInternal)
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.JWTSecret, u.ID, h.Cfg.RefreshTTL)
	if err != nil {
		h.Log.Error().Err(err).Msg("login: refresh token signing failed")
		return Fail(c, http.StatusInternalServerError, msgInternal)
	}
	if err := h.Tokens.Upsert(ctx, u.ID, utils.HashTokenRaw(refresh.Raw), refresh.Exp); err != nil {
		h.Log.Error().Err(err).Msg("login: refresh token store failed")
		return Fail(c, http.StatusInternalServerError, msgInternal)
	}

	return c.JSON(http.StatusOK, tokenPairResp{
		AccessToken:  access.Token,
		RefreshToken: refresh.Raw,
	})
}

// Refresh exchanges a valid, current refresh token for a new pair.
// Signature and expiry were already checked by the RefreshJWT
// middleware; what happens here is the rotation itself. The stored
// row is swapped to the new value by a compare-and-swap on the old
// one, so each token value survives exactly one successful refresh.
// Presenting it again (or after its owner withdrew) is rejected.
func (h *AuthHandler) Refresh(c echo.Context) error {
	uid := middleware.RequesterID(c)
	raw, _ := c.Get(middleware.CtxRefreshRaw).(string)
	if uid == 0 || raw == "" {
		return Fail(c, http.StatusUnauthorized, msgTokenReuse)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return Fail(c, http.StatusUnauthorized, msgTokenReuse)
		}
		h.Log.Error().Err(err).Msg("refresh: user lookup failed")
		return Fail(c, http.StatusInternalServerError, msgInternal)
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Username, h.Cfg.AccessTTL)
	if err != nil {
		h.Log.Error().Err(err).Msg("refresh: access token signing failed")
		return Fail(c, http.StatusInternalServerError, msgInternal)
	}
	next, err := utils.NewRefreshToken(h.Cfg.JWTSecret, u.ID, h.Cfg.RefreshTTL)
	if err != nil {
		h.Log.Error().Err(err).Msg("refresh: refresh token signing failed")
		return Fail(c, http.StatusInternalServerError, msgInternal)
	}

	err = h.Tokens.Rotate(ctx, utils.HashTokenRaw(raw), utils.HashTokenRaw(next.Raw), next.Exp)
	if err != nil {
		if errors.Is(err, repository.ErrTokenReuse) {
			return Fail(c, http.StatusUnauthorized, msgTokenReuse)
		}
		h.Log.Error().Err(err).Msg("refresh: rotation failed")
		return Fail(c, http.StatusInternalServerError, msgInternal)
	}

	return c.JSON(http.StatusOK, tokenPairResp{
		AccessToken:  access.Token,
		RefreshToken: next.Raw,
	})
}

// Logout drops the requester's refresh token row. The access token
// stays valid until it expires; what ends here is the ability to
// renew the session.
func (h *AuthHandler) Logout(c echo.Context) error {
	uid := middleware.RequesterID(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Tokens.DeleteForUser(ctx, uid); err != nil {
		h.Log.Error().Err(err).Uint64("user_id", uid).Msg("logout: token delete failed")
		return Fail(c, http.StatusInternalServerError, msgInternal)
	}
	return c.NoContent(http.StatusNoContent)
}

// Confirm handles the link from the confirmation mail. It always
// redirects: failures to the signup-fail page, an already-confirmed
// account to the home page (idempotent), success to the signup-done
// page.
func (h *AuthHandler) Confirm(c echo.Context) error {
	uid, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil {
		return c.Redirect(http.StatusFound, h.Cfg.ConfirmFailURL)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return c.Redirect(http.StatusFound, h.Cfg.ConfirmFailURL)
	}
	if u.EmailConfirmed {
		return c.Redirect(http.StatusFound, h.Cfg.HomeURL)
	}
	if err := utils.CheckConfirmation(u.Email, c.Param("hash")); err != nil {
		return c.Redirect(http.StatusFound, h.Cfg.ConfirmFailURL)
	}
	if err := h.Users.SetConfirmed(ctx, uid); err != nil {
		h.Log.Error().Err(err).Uint64("user_id", uid).Msg("confirm: flag update failed")
		return c.Redirect(http.StatusFound, h.Cfg.ConfirmFailURL)
	}
	return c.Redirect(http.StatusFound, h.Cfg.ConfirmDoneURL)
}
