package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/tradefund/pkg/metrics"
	authmw "github.com/Skotchmaster/tradefund/pkg/middleware/auth"
	"github.com/Skotchmaster/tradefund/pkg/middleware/ratelimit"
	"github.com/Skotchmaster/tradefund/pkg/roles"
)

type Deps struct {
	AuthHandler  *AuthHTTP
	JWTSecret    []byte
	LoginLimiter *ratelimit.Limiter
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	metrics.Register(e)

	authMW := authmw.NewAutoRefreshMiddleware(d.JWTSecret, nil)

	auth := e.Group("/auth")
	var limited []echo.MiddlewareFunc
	if d.LoginLimiter != nil {
		limited = append(limited, d.LoginLimiter.Middleware())
	}
	auth.POST("/register", d.AuthHandler.Register, limited...)
	auth.POST("/login", d.AuthHandler.Login, limited...)
	auth.POST("/refresh", d.AuthHandler.Refresh)
	auth.POST("/logout", d.AuthHandler.LogOut)

	me := auth.Group("/me", authMW.RequireAuth)
	me.GET("", d.AuthHandler.Me)
	me.PATCH("", d.AuthHandler.PatchMe)
	me.POST("/kyc", d.AuthHandler.SubmitKYC)

	admin := auth.Group("/admin")
	admin.GET("/users", d.AuthHandler.ListUsers, authMW.RequireRoles(roles.Admins...))
	admin.POST("/users", d.AuthHandler.CreateUser, authMW.RequireRoles(roles.SuperAdmin))
	admin.POST("/users/:id/kyc", d.AuthHandler.ReviewKYC, authMW.RequireRoles(roles.InvestmentStaff...))
}
