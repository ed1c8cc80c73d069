package httpserver

import (
	"net/http"
	"slices"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/tradefund/pkg/logging"
	"github.com/Skotchmaster/tradefund/services/chat/internal/realtime"
	"github.com/Skotchmaster/tradefund/services/chat/internal/service"
)

// SocketHTTP upgrades authenticated requests to chat sockets.
type SocketHTTP struct {
	Hub            *realtime.Hub
	Svc            *service.ChatService
	AllowedOrigins []string

	upgrader websocket.Upgrader
}

func NewSocketHTTP(hub *realtime.Hub, svc *service.ChatService, allowedOrigins []string) *SocketHTTP {
	h := &SocketHTTP{Hub: hub, Svc: svc, AllowedOrigins: allowedOrigins}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *SocketHTTP) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(h.AllowedOrigins) == 0 {
		return true
	}
	return slices.Contains(h.AllowedOrigins, origin)
}

func (h *SocketHTTP) Serve(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "chat.socket")

	if h == nil || h.Hub == nil {
		l.Warn("chat_socket_error", "status", 503, "reason", "realtime disabled")
		return echo.NewHTTPError(http.StatusServiceUnavailable, "realtime chat disabled")
	}
	a, err := actor(c)
	if err != nil {
		return err
	}
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// the upgrader already wrote the error response
		l.Warn("chat_socket_upgrade_failed", "error", err)
		return nil
	}

	l.Info("chat_socket_open", "user_id", a.ID)
	realtime.NewClient(h.Hub, h.Svc, conn, a.ID, a.Role, l).Serve(ctx)
	l.Info("chat_socket_closed", "user_id", a.ID)
	return nil
}

// tokenFromQuery lets browsers, which cannot set headers on sockets, pass ?access_token=.
func tokenFromQuery(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		if tok := c.QueryParam("access_token"); tok != "" && req.Header.Get(echo.HeaderAuthorization) == "" {
			req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok)
		}
		return next(c)
	}
}
