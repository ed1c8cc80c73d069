package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/tradefund/pkg/authclient"
	"github.com/Skotchmaster/tradefund/pkg/metrics"
	authmw "github.com/Skotchmaster/tradefund/pkg/middleware/auth"
	"github.com/Skotchmaster/tradefund/pkg/middleware/ratelimit"
	"github.com/Skotchmaster/tradefund/pkg/roles"
)

type Deps struct {
	UploadHandler *UploadHTTP
	Root          string
	Limiter       *ratelimit.Limiter
	JWTSecret     []byte
	AuthClient    *authclient.Client
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	metrics.Register(e)

	authMW := authmw.NewAutoRefreshMiddleware(d.JWTSecret, d.AuthClient)

	// largest category cap plus multipart overhead
	mws := []echo.MiddlewareFunc{echomw.BodyLimit("11M"), authMW.RequireAuth}
	if d.Limiter != nil {
		mws = append(mws, d.Limiter.Middleware())
	}
	e.POST("/upload/:category", d.UploadHandler.Upload, mws...)

	files := &FilesHTTP{Root: d.Root}
	// identity documents are only readable by admins
	e.GET("/uploads/kyc/:name", files.KYC, authMW.RequireRoles(roles.Admins...))
	e.GET("/uploads/:category/:name", files.Public)
}
