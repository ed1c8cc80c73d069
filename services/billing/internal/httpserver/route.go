package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/tradefund/pkg/authclient"
	"github.com/Skotchmaster/tradefund/pkg/metrics"
	authmw "github.com/Skotchmaster/tradefund/pkg/middleware/auth"
	"github.com/Skotchmaster/tradefund/pkg/roles"
)

type Deps struct {
	BillingHandler *BillingHTTP
	JWTSecret      []byte
	AuthClient     *authclient.Client
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	metrics.Register(e)

	authMW := authmw.NewAutoRefreshMiddleware(d.JWTSecret, d.AuthClient)

	g := e.Group("/subscription")
	g.GET("/plans", d.BillingHandler.Plans)
	g.POST("/callbacks/:provider", d.BillingHandler.Callback)

	g.POST("", d.BillingHandler.Subscribe, authMW.RequireRoles(roles.SelfService...))
	g.GET("/mine", d.BillingHandler.Mine, authMW.RequireAuth)
	g.GET("/:id", d.BillingHandler.Get, authMW.RequireAuth)
	g.POST("/:id/cancel", d.BillingHandler.Cancel, authMW.RequireAuth)

	g.GET("/admin/payments", d.BillingHandler.Payments, authMW.RequireRoles(roles.SuperAdmin))
}
