package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/tradefund/pkg/authclient"
	"github.com/Skotchmaster/tradefund/pkg/metrics"
	authmw "github.com/Skotchmaster/tradefund/pkg/middleware/auth"
)

type Deps struct {
	NotificationHandler *NotificationHTTP
	JWTSecret           []byte
	AuthClient          *authclient.Client
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	metrics.Register(e)

	authMW := authmw.NewAutoRefreshMiddleware(d.JWTSecret, d.AuthClient)

	g := e.Group("/notifications", authMW.RequireAuth)
	g.GET("", d.NotificationHandler.List)
	g.GET("/unread-count", d.NotificationHandler.UnreadCount)
	g.POST("/read-all", d.NotificationHandler.MarkAllRead)
	g.POST("/:id/read", d.NotificationHandler.MarkRead)
}
