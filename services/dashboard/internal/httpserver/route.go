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
	DashboardHandler *DashboardHTTP
	JWTSecret        []byte
	AuthClient       *authclient.Client
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	metrics.Register(e)

	authMW := authmw.NewAutoRefreshMiddleware(d.JWTSecret, d.AuthClient)
	h := d.DashboardHandler

	g := e.Group("/dashboard")
	g.GET("/me", h.Me, authMW.RequireAuth)
	g.GET("/investor", h.Investor, authMW.RequireRoles(append([]string{roles.Investor}, roles.InvestmentStaff...)...))
	g.GET("/owner", h.Owner, authMW.RequireRoles(append([]string{roles.ProjectOwner}, roles.InvestmentStaff...)...))
	g.GET("/buyer", h.Buyer, authMW.RequireRoles(append([]string{roles.Buyer}, roles.TradingStaff...)...))
	g.GET("/seller", h.Seller, authMW.RequireRoles(append([]string{roles.Seller}, roles.TradingStaff...)...))

	admin := g.Group("/admin")
	admin.GET("/trading", h.TradingAdmin, authMW.RequireRoles(roles.TradingStaff...))
	admin.GET("/investment", h.InvestmentAdmin, authMW.RequireRoles(roles.InvestmentStaff...))
	admin.GET("/billing", h.Billing, authMW.RequireRoles(roles.SuperAdmin))
	admin.GET("/overview", h.Overview, authMW.RequireRoles(roles.SuperAdmin))
}
