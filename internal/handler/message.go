package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/5nonymous/money-for-rabbit/internal/config"
	"github.com/5nonymous/money-for-rabbit/internal/middleware"
	"github.com/5nonymous/money-for-rabbit/internal/model"
	"github.com/5nonymous/money-for-rabbit/internal/policy"
	"github.com/5nonymous/money-for-rabbit/internal/repository"
)

const messagesPerPage = 6

// MessageHandler implements writing and reading gift-money messages.
type MessageHandler struct {
	Cfg      config.Config
	Log      zerolog.Logger
	Users    *repository.UserRepo
	Messages *repository.MessageRepo
}

func NewMessageHandler(cfg config.Config, log zerolog.Logger, u *repository.UserRepo, m *repository.MessageRepo) *MessageHandler {
	return &MessageHandler{Cfg: cfg, Log: log, Users: u, Messages: m}
}

type writeMessageReq struct {
	Message    string `json:"message"`
	Amount     int64  `json:"amount"`
	IsMoneybag bool   `json:"is_moneybag"`
}

type messageResp struct {
	ID         uint64    `json:"id"`
	Message    string    `json:"message"`
	Amount     int64     `json:"amount"`
	IsMoneybag bool      `json:"is_moneybag"`
	AuthorID   *uint64   `json:"author_id"`
	UserID     uint64    `json:"user_id"`
	CreatedAt  time.Time `json:"created_at"`
}

func toMessageResp(m model.Message) messageResp {
	return messageResp{
		ID:         m.ID,
		Message:    m.Message,
		Amount:     m.Amount,
		IsMoneybag: m.IsMoneybag,
		AuthorID:   m.AuthorID,
		UserID:     m.UserID,
		CreatedAt:  m.CreatedAt,
	}
}

// open reports whether the reveal date has passed. A zero MessageOpenAt
// means messages were never gated.
func (h *MessageHandler) open() bool {
	return h.Cfg.MessageOpenAt.IsZero() || time.Now().After(h.Cfg.MessageOpenAt)
}

// Write leaves a message for the recipient in the URL. The requester
// becomes the author; amounts outside the banknote denominations are
// rejected unless sent as an envelope.
func (h *MessageHandler) Write(c echo.Context) error {
	recipientID, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil {
		return Fail(c, http.StatusBadRequest, msgUserNotFound)
	}

	var req writeMessageReq
	if err := c.Bind(&req); err != nil {
		return Fail(c, http.StatusBadRequest, msgInvalidBody)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Users.GetByID(ctx, recipientID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return Fail(c, http.StatusBadRequest, msgUserNotFound)
		}
		h.Log.Error().Err(err).Msg("message write: recipient lookup failed")
		return Fail(c, http.StatusInternalServerError, msgInternal)
	}

	m, err := model.NewMessage(req.Message, req.Amount, req.IsMoneybag, middleware.RequesterID(c), recipientID)
	if err != nil {
		return Fail(c, http.StatusBadRequest, err.Error())
	}

	id, err := h.Messages.Create(ctx, m)
	if err != nil {
		h.Log.Error().Err(err).Msg("message write: insert failed")
		return Fail(c, http.StatusInternalServerError, msgInternal)
	}
	m.ID = id
	m.CreatedAt = time.Now().UTC()

	return c.JSON(http.StatusCreated, toMessageResp(m))
}

// List returns one page of the requester's own received messages,
// newest first, with pagination links.
func (h *MessageHandler) List(c echo.Context) error {
	if !h.open() {
		return Fail(c, http.StatusBadRequest, msgMessagesClosed)
	}
	uid, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil {
		return Fail(c, http.StatusBadRequest, msgUserNotFound)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return Fail(c, http.StatusBadRequest, msgUserNotFound)
		}
		h.Log.Error().Err(err).Msg("message list: user lookup failed")
		return Fail(c, http.StatusInternalServerError, msgInternal)
	}
	if !policy.IsSelf(middleware.RequesterID(c), uid) {
		return Fail(c, http.StatusForbidden, msgSelfOnlyMessages)
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}

	msgs, total, err := h.Messages.ListByRecipient(ctx, uid, page, messagesPerPage)
	if err != nil {
		h.Log.Error().Err(err).Msg("message list: query failed")
		return Fail(c, http.StatusInternalServerError, msgInternal)
	}
	totalAmount, err := h.Messages.TotalAmount(ctx, uid)
	if err != nil {
		h.Log.Error().Err(err).Msg("message list: total amount query failed")
		return Fail(c, http.StatusInternalServerError, msgInternal)
	}

	items := make([]messageResp, 0, len(msgs))
	for _, m := range msgs {
		items = append(items, toMessageResp(m))
	}

	baseURL := c.Scheme() + "://" + c.Request().Host + c.Request().URL.Path
	var next, prev *string
	if int64(page*messagesPerPage) < total {
		u := fmt.Sprintf("%s?page=%d", baseURL, page+1)
		next = &u
	}
	if page > 1 {
		u := fmt.Sprintf("%s?page=%d", baseURL, page-1)
		prev = &u
	}

	return c.JSON(http.StatusOK, echo.Map{
		"user_info": echo.Map{
			"username":     u.Username,
			"email":        u.Email,
			"total_amount": totalAmount,
		},
		"message_set_count": total,
		"next":              next,
		"prev":              prev,
		"messages":          items,
	})
}

// Detail returns a single message. Public like the profile page: the
// share link identifies recipient and message.
func (h *MessageHandler) Detail(c echo.Context) error {
	if !h.open() {
		return Fail(c, http.StatusBadRequest, msgMessagesClosed)
	}
	uid, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil {
		return Fail(c, http.StatusNotFound, msgUserNotFound)
	}
	mid, err := strconv.ParseUint(c.Param("message_id"), 10, 64)
	if err != nil {
		return Fail(c, http.StatusNotFound, msgMessageNotFound)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Users.GetByID(ctx, uid); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return Fail(c, http.StatusNotFound, msgUserNotFound)
		}
		h.Log.Error().Err(err).Msg("message detail: user lookup failed")
		return Fail(c, http.StatusInternalServerError, msgInternal)
	}
	m, err := h.Messages.GetByID(ctx, mid)
	if err != nil {
		if errors.Is(err, repository.ErrMessageNotFound) {
			return Fail(c, http.StatusNotFound, msgMessageNotFound)
		}
		h.Log.Error().Err(err).Msg("message detail: query failed")
		return Fail(c, http.StatusInternalServerError, msgInternal)
	}

	return c.JSON(http.StatusOK, toMessageResp(m))
}
