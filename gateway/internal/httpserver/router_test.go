package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/tradefund/pkg/middleware/csrf"
	"github.com/Skotchmaster/tradefund/pkg/roles"
	"github.com/Skotchmaster/tradefund/pkg/tokens"
)

var secret = []byte("gateway-secret")

type seen struct {
	Path  string `json:"path"`
	Host  string `json:"forwarded_host"`
	Query string `json:"query"`
}

func upstream(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(seen{Path: r.URL.Path, Host: r.Header.Get("X-Forwarded-Host"), Query: r.URL.RawQuery})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newGateway(t *testing.T, withCSRF bool) *echo.Echo {
	t.Helper()
	up := upstream(t).URL
	d := &Deps{
		Upstreams: DefaultUpstreams(up, up, up, up, up, up, up, up),
		UploadURL: up,
		JWTSecret: secret,
	}
	if withCSRF {
		c := csrf.DefaultConfig()
		c.SkipPaths = []string{"/api/v1/auth/login"}
		d.CSRF = &c
	}
	e := echo.New()
	require.NoError(t, Register(e, d))
	return e
}

func token(t *testing.T, role string) string {
	t.Helper()
	tok, err := tokens.SignAccess(tokens.AccessClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}, secret)
	require.NoError(t, err)
	return tok
}

type reqOpt func(*http.Request)

func withBearer(tok string) reqOpt {
	return func(r *http.Request) { r.Header.Set(echo.HeaderAuthorization, "Bearer "+tok) }
}

func withCookie(name, value string) reqOpt {
	return func(r *http.Request) { r.AddCookie(&http.Cookie{Name: name, Value: value}) }
}

func do(e *echo.Echo, method, target string, opts ...reqOpt) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for _, o := range opts {
		o(req)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func upstreamPath(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var s seen
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s), rec.Body.String())
	return s.Path
}

func TestGateway_Routing(t *testing.T) {
	t.Parallel()

	e := newGateway(t, false)
	buyer := token(t, roles.Buyer)
	admin := token(t, roles.TradingAdmin)

	cases := []struct {
		name   string
		method string
		target string
		opts   []reqOpt
		want   int
		path   string
	}{
		{"public catalog", http.MethodGet, "/api/v1/trading/products?page=2", nil, http.StatusOK, "/trading/products"},
		{"public plans", http.MethodGet, "/api/v1/subscription/plans", nil, http.StatusOK, "/subscription/plans"},
		{"login", http.MethodPost, "/api/v1/auth/login", nil, http.StatusOK, "/auth/login"},
		{"order needs a session", http.MethodPost, "/api/v1/trading/orders", nil, http.StatusUnauthorized, ""},
		{"catalog writes need a session", http.MethodPost, "/api/v1/trading/products", nil, http.StatusUnauthorized, ""},
		{"buyer places order", http.MethodPost, "/api/v1/trading/orders", []reqOpt{withBearer(buyer)}, http.StatusOK, "/trading/orders"},
		{"buyer kept out of moderation", http.MethodGet, "/api/v1/trading/admin/products", []reqOpt{withBearer(buyer)}, http.StatusForbidden, ""},
		{"staff moderates", http.MethodGet, "/api/v1/trading/admin/products", []reqOpt{withBearer(admin)}, http.StatusOK, "/trading/admin/products"},
		{"trading staff kept out of investment admin", http.MethodGet, "/api/v1/investment/admin/projects", []reqOpt{withBearer(admin)}, http.StatusForbidden, ""},
		{"cookie session", http.MethodGet, "/api/v1/notifications", []reqOpt{withCookie("accessToken", buyer)}, http.StatusOK, "/notifications"},
		{"stale session goes to the service", http.MethodGet, "/api/v1/notifications", []reqOpt{withCookie("accessToken", "expired"), withCookie("refreshToken", "r")}, http.StatusOK, "/notifications"},
		{"garbage token", http.MethodGet, "/api/v1/notifications", []reqOpt{withBearer("garbage")}, http.StatusUnauthorized, ""},
		{"uploaded file", http.MethodGet, "/uploads/product-image/a.png", nil, http.StatusOK, "/uploads/product-image/a.png"},
		{"billing admin is super admin only", http.MethodGet, "/api/v1/subscription/admin/payments", []reqOpt{withBearer(admin)}, http.StatusForbidden, ""},
		{"unknown segment", http.MethodGet, "/api/v1/nowhere", []reqOpt{withBearer(buyer)}, http.StatusNotFound, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(e, tc.method, tc.target, tc.opts...)
			require.Equal(t, tc.want, rec.Code, rec.Body.String())
			if tc.path != "" {
				assert.Equal(t, tc.path, upstreamPath(t, rec))
			}
		})
	}
}

func TestGateway_CSRF(t *testing.T) {
	t.Parallel()

	e := newGateway(t, true)
	buyer := token(t, roles.Buyer)

	rec := do(e, http.MethodPost, "http://shop.test/api/v1/trading/orders", withCookie("accessToken", buyer))
	assert.Equal(t, http.StatusForbidden, rec.Code, "cookie session without csrf token")

	rec = do(e, http.MethodPost, "http://shop.test/api/v1/trading/orders",
		withCookie("accessToken", buyer),
		withCookie("XSRF-TOKEN", "tok"),
		func(r *http.Request) {
			r.Header.Set("X-CSRF-Token", "tok")
			r.Header.Set("Origin", "http://shop.test")
		})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(e, http.MethodPost, "http://shop.test/api/v1/trading/orders", withBearer(buyer))
	assert.Equal(t, http.StatusOK, rec.Code, "bearer clients are not cookie-authenticated")
}

func TestGateway_UpstreamDown(t *testing.T) {
	t.Parallel()

	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := dead.URL
	dead.Close()

	e := echo.New()
	require.NoError(t, Register(e, &Deps{
		Upstreams: []Upstream{{Name: "trading", Segment: "trading", URL: deadURL}},
		JWTSecret: secret,
	}))
	rec := do(e, http.MethodGet, "/api/v1/trading/products")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
