package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/tradefund/gateway/internal/middleware"
	"github.com/Skotchmaster/tradefund/pkg/metrics"
	"github.com/Skotchmaster/tradefund/pkg/middleware/csrf"
	"github.com/Skotchmaster/tradefund/pkg/middleware/ratelimit"
	"github.com/Skotchmaster/tradefund/pkg/roles"
)

const apiPrefix = "/api/v1"

// Upstream is one backend service and the first path segment it owns.
type Upstream struct {
	Name    string
	Segment string
	URL     string
}

type Deps struct {
	Upstreams []Upstream
	UploadURL string

	Checkout  *CheckoutHTTP
	JWTSecret []byte
	CSRF      *csrf.Config
	Limiter   *ratelimit.Limiter
	Transport http.RoundTripper
}

var get = []string{http.MethodGet, http.MethodHead}

// Rules is the coarse gate in front of the services. The services still check
// ownership and roles themselves.
var Rules = []middleware.Rule{
	{Prefix: apiPrefix + "/auth/register", Public: true},
	{Prefix: apiPrefix + "/auth/login", Public: true},
	{Prefix: apiPrefix + "/auth/refresh", Public: true},
	{Prefix: apiPrefix + "/auth/logout", Public: true},
	{Prefix: apiPrefix + "/auth/admin", Roles: roles.Admins},

	{Prefix: apiPrefix + "/trading/admin", Roles: roles.TradingStaff},
	{Prefix: apiPrefix + "/trading/products", Methods: get, Public: true},
	{Prefix: apiPrefix + "/trading/sellers", Methods: get, Public: true},

	{Prefix: apiPrefix + "/investment/admin", Roles: roles.InvestmentStaff},
	{Prefix: apiPrefix + "/investment/projects", Methods: get, Public: true},

	{Prefix: apiPrefix + "/checkout", Roles: []string{roles.Buyer}},

	{Prefix: apiPrefix + "/dashboard/admin", Roles: roles.Admins},

	{Prefix: apiPrefix + "/subscription/admin", Roles: []string{roles.SuperAdmin}},
	{Prefix: apiPrefix + "/subscription/plans", Methods: get, Public: true},
	{Prefix: apiPrefix + "/subscription/callbacks", Public: true},

	// the chat service reads the token from the query string
	{Prefix: apiPrefix + "/chat/ws", Public: true},

	{Prefix: "/uploads", Methods: get, Public: true},
}

// DefaultUpstreams pairs each service with the path segment it serves.
func DefaultUpstreams(auth, trading, investment, notification, chat, dashboard, billing, upload string) []Upstream {
	return []Upstream{
		{Name: "auth", Segment: "auth", URL: auth},
		{Name: "trading", Segment: "trading", URL: trading},
		{Name: "investment", Segment: "investment", URL: investment},
		{Name: "notification", Segment: "notifications", URL: notification},
		{Name: "chat", Segment: "chat", URL: chat},
		{Name: "dashboard", Segment: "dashboard", URL: dashboard},
		{Name: "billing", Segment: "subscription", URL: billing},
		{Name: "upload", Segment: "upload", URL: upload},
	}
}

func Register(e *echo.Echo, d *Deps) error {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	metrics.Register(e)

	transport := d.Transport
	if transport == nil {
		transport = newTransport()
	}

	mws := []echo.MiddlewareFunc{middleware.Identify(d.JWTSecret), middleware.Gate(Rules)}
	mws = append(mws, middleware.Common(d.Limiter)...)
	if d.CSRF != nil {
		mws = append(mws, csrf.Middleware(*d.CSRF))
	}

	api := e.Group(apiPrefix, mws...)
	for _, u := range d.Upstreams {
		h, err := newProxy(u.Name, u.URL, apiPrefix, transport)
		if err != nil {
			return err
		}
		api.Any("/"+u.Segment, h)
		api.Any("/"+u.Segment+"/*", h)
	}
	if d.Checkout != nil {
		api.POST("/checkout/orders", d.Checkout.PlaceOrders)
	}

	if d.UploadURL != "" {
		files, err := newProxy("upload", d.UploadURL, "", transport)
		if err != nil {
			return err
		}
		e.Match(get, "/uploads/*", files, mws...)
	}
	return nil
}
