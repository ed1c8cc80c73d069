package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/tradefund/pkg/authclient"
	"github.com/Skotchmaster/tradefund/pkg/metrics"
	authmw "github.com/Skotchmaster/tradefund/pkg/middleware/auth"
)

type Deps struct {
	ChatHandler   *ChatHTTP
	SocketHandler *SocketHTTP
	JWTSecret     []byte
	AuthClient    *authclient.Client
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	metrics.Register(e)

	authMW := authmw.NewAutoRefreshMiddleware(d.JWTSecret, d.AuthClient)

	g := e.Group("/chat")
	g.GET("/ws", d.SocketHandler.Serve, tokenFromQuery, authMW.RequireAuth)

	chats := g.Group("/chats", authMW.RequireAuth)
	chats.GET("", d.ChatHandler.ListChats)
	chats.POST("", d.ChatHandler.CreateChat)
	chats.GET("/unread", d.ChatHandler.Unread)
	chats.GET("/:id", d.ChatHandler.GetChat)
	chats.GET("/:id/messages", d.ChatHandler.Messages)
	chats.POST("/:id/messages", d.ChatHandler.Send)
	chats.POST("/:id/read", d.ChatHandler.MarkRead)
}
