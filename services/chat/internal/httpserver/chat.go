package httpserver

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/tradefund/pkg/logging"
	"github.com/Skotchmaster/tradefund/pkg/pagination"
	"github.com/Skotchmaster/tradefund/services/chat/internal/service"
	"github.com/Skotchmaster/tradefund/services/chat/internal/transport"
)

const (
	defaultMessageLimit = 50
	maxMessageLimit     = 200
)

type ChatHTTP struct {
	Svc *service.ChatService
}

func (h *ChatHTTP) CreateChat(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "chat.create_chat")

	a, err := actor(c)
	if err != nil {
		return err
	}
	var req transport.CreateChatRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "create_chat_error", err)
	}
	chat, err := h.Svc.CreateChat(ctx, a, req)
	if err != nil {
		return fail(l, "create_chat_error", err)
	}

	l.Info("create_chat_success", "chat_id", chat.ID, "kind", chat.Kind)
	return c.JSON(http.StatusCreated, chat)
}

func (h *ChatHTTP) ListChats(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "chat.list_chats")

	a, err := actor(c)
	if err != nil {
		return err
	}
	p := pagination.FromQuery(c)
	total, items, err := h.Svc.ListChats(ctx, a, c.QueryParam("kind"), p.Offset, p.Size)
	if err != nil {
		return fail(l, "list_chats_error", err)
	}
	return c.JSON(http.StatusOK, pagination.Body(p, total, items))
}

func (h *ChatHTTP) GetChat(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "chat.get_chat")

	a, err := actor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, l, "get_chat_error")
	if err != nil {
		return err
	}
	chat, err := h.Svc.GetChat(ctx, a, id)
	if err != nil {
		return fail(l, "get_chat_error", err)
	}
	return c.JSON(http.StatusOK, chat)
}

// Messages pages backwards with ?before=<RFC3339> and ?limit=.
func (h *ChatHTTP) Messages(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "chat.messages")

	a, err := actor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, l, "list_messages_error")
	if err != nil {
		return err
	}
	var before time.Time
	if v := c.QueryParam("before"); v != "" {
		if before, err = time.Parse(time.RFC3339Nano, v); err != nil {
			l.Warn("list_messages_error", "status", 400, "reason", "bad before", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "before must be RFC3339")
		}
	}
	limit := defaultMessageLimit
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v > 0 {
		limit = min(v, maxMessageLimit)
	}
	items, err := h.Svc.Messages(ctx, a, id, before, limit)
	if err != nil {
		return fail(l, "list_messages_error", err)
	}
	return c.JSON(http.StatusOK, map[string]any{"data": items})
}

func (h *ChatHTTP) Send(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "chat.send")

	a, err := actor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, l, "send_message_error")
	if err != nil {
		return err
	}
	var req transport.SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "send_message_error", err)
	}
	m, err := h.Svc.Send(ctx, a, id, req.Body)
	if err != nil {
		return fail(l, "send_message_error", err)
	}

	l.Info("send_message_success", "chat_id", id, "message_id", m.ID)
	return c.JSON(http.StatusCreated, m)
}

func (h *ChatHTTP) MarkRead(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "chat.mark_read")

	a, err := actor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, l, "mark_read_error")
	if err != nil {
		return err
	}
	if err := h.Svc.MarkRead(ctx, a, id); err != nil {
		return fail(l, "mark_read_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ChatHTTP) Unread(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "chat.unread")

	a, err := actor(c)
	if err != nil {
		return err
	}
	total, per, err := h.Svc.UnreadTotal(ctx, a)
	if err != nil {
		return fail(l, "unread_error", err)
	}
	return c.JSON(http.StatusOK, map[string]any{"total": total, "chats": per})
}
