package middleware

import (
	"github.com/labstack/echo/v4"
	ecM "github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/tradefund/pkg/middleware/ratelimit"
)

// Common is what runs in front of every proxied route.
func Common(limiter *ratelimit.Limiter) []echo.MiddlewareFunc {
	mws := []echo.MiddlewareFunc{ecM.Secure()}
	if limiter != nil {
		mws = append(mws, limiter.Middleware())
	}
	return mws
}
