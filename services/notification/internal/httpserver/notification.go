package httpserver

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/tradefund/pkg/logging"
	authmw "github.com/Skotchmaster/tradefund/pkg/middleware/auth"
	"github.com/Skotchmaster/tradefund/pkg/pagination"
	"github.com/Skotchmaster/tradefund/services/notification/internal/service"
)

type NotificationHTTP struct {
	Svc *service.NotificationService
}

func caller(c echo.Context) (uuid.UUID, error) {
	id, err := authmw.UserID(c)
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return id, nil
}

func (h *NotificationHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "notification.list")

	userID, err := caller(c)
	if err != nil {
		return err
	}
	p := pagination.FromQuery(c)
	total, items, err := h.Svc.List(ctx, userID, c.QueryParam("unread") == "true", p.Offset, p.Size)
	if err != nil {
		l.Error("list_notifications_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, pagination.Body(p, total, items))
}

func (h *NotificationHTTP) UnreadCount(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "notification.unread_count")

	userID, err := caller(c)
	if err != nil {
		return err
	}
	n, err := h.Svc.UnreadCount(ctx, userID)
	if err != nil {
		l.Error("unread_count_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, map[string]int64{"unread": n})
}

func (h *NotificationHTTP) MarkRead(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "notification.mark_read")

	userID, err := caller(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("mark_read_error", "status", 400, "reason", "id not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id not a uuid")
	}
	if err := h.Svc.MarkRead(ctx, userID, id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("mark_read_error", "status", 404, "error", err)
			return echo.NewHTTPError(http.StatusNotFound, "notification not found")
		}
		l.Error("mark_read_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *NotificationHTTP) MarkAllRead(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "notification.mark_all_read")

	userID, err := caller(c)
	if err != nil {
		return err
	}
	n, err := h.Svc.MarkAllRead(ctx, userID)
	if err != nil {
		l.Error("mark_all_read_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	l.Info("mark_all_read_success", "marked", n)
	return c.JSON(http.StatusOK, map[string]int64{"marked": n})
}
