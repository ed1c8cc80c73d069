package middleware

import (
	"errors"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/tradefund/pkg/authclient"
	jwthelp "github.com/Skotchmaster/tradefund/pkg/jwt"
	"github.com/Skotchmaster/tradefund/pkg/tokens"
)

const (
	CtxUserID = "user_id"
	CtxRole   = "role"
)

var ErrUnauthorized = errors.New("unauthorized")

type AutoRefreshMiddleware struct {
	JWTSecret  []byte
	AuthClient *authclient.Client
}

func NewAutoRefreshMiddleware(secret []byte, authClient *authclient.Client) *AutoRefreshMiddleware {
	return &AutoRefreshMiddleware{
		JWTSecret:  secret,
		AuthClient: authClient,
	}
}

type ValidatorFunc func(claims *tokens.AccessClaims) error

func (m *AutoRefreshMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, nil)
}

// RequireRoles admits only principals whose role is one of allowed.
func (m *AutoRefreshMiddleware) RequireRoles(allowed ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return m.requireAuthWithValidator(next, func(claims *tokens.AccessClaims) error {
			if !slices.Contains(allowed, claims.Role) {
				return echo.NewHTTPError(http.StatusForbidden, "insufficient role")
			}
			return nil
		})
	}
}

// OptionalAuth sets the principal when a valid access token is present and lets
// anonymous requests through untouched.
func (m *AutoRefreshMiddleware) OptionalAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := BearerToken(c.Request())
		if raw == "" {
			if ck, err := c.Cookie(jwthelp.AccessCookie); err == nil {
				raw = ck.Value
			}
		}
		if raw != "" {
			if claims, err := tokens.AccessClaimsFromToken(raw, m.JWTSecret); err == nil && claims.Subject != "" {
				c.Set(CtxUserID, claims.Subject)
				c.Set(CtxRole, claims.Role)
			}
		}
		return next(c)
	}
}

func (m *AutoRefreshMiddleware) requireAuthWithValidator(next echo.HandlerFunc, validator ValidatorFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if bearer := BearerToken(c.Request()); bearer != "" {
			claims, err := tokens.AccessClaimsFromToken(bearer, m.JWTSecret)
			if err != nil || claims == nil || claims.Subject == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
			}
			return m.admit(c, next, claims, validator)
		}

		accessCookie, err := c.Cookie(jwthelp.AccessCookie)
		if err != nil || accessCookie.Value == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
		}

		claims, err := tokens.AccessClaimsFromToken(accessCookie.Value, m.JWTSecret)
		if err == nil && claims != nil {
			return m.admit(c, next, claims, validator)
		}

		if !errors.Is(err, jwt.ErrTokenExpired) || m.AuthClient == nil {
			clearAuthCookies(c)
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
		}

		refreshCookie, rErr := c.Cookie(jwthelp.RefreshCookie)
		if rErr != nil || refreshCookie.Value == "" {
			clearAuthCookies(c)
			return echo.NewHTTPError(http.StatusUnauthorized, "refresh token missing")
		}

		refreshResp, refErr := m.AuthClient.RefreshTokens(c.Request().Context(), refreshCookie.Value)
		if refErr != nil {
			clearAuthCookies(c)
			return echo.NewHTTPError(http.StatusUnauthorized, "refresh failed")
		}

		c.SetCookie(jwthelp.CreateCookie(jwthelp.AccessCookie, refreshResp.AccessToken, "/", time.Unix(refreshResp.AccessExp, 0)))
		c.SetCookie(jwthelp.CreateCookie(jwthelp.RefreshCookie, refreshResp.RefreshToken, "/", time.Unix(refreshResp.RefreshExp, 0)))

		newClaims, pErr := tokens.AccessClaimsFromToken(refreshResp.AccessToken, m.JWTSecret)
		if pErr != nil || newClaims == nil {
			clearAuthCookies(c)
			return echo.NewHTTPError(http.StatusUnauthorized, "new access token invalid")
		}
		return m.admit(c, next, newClaims, validator)
	}
}

func (m *AutoRefreshMiddleware) admit(c echo.Context, next echo.HandlerFunc, claims *tokens.AccessClaims, validator ValidatorFunc) error {
	if validator != nil {
		if err := validator(claims); err != nil {
			return err
		}
	}
	c.Set(CtxUserID, claims.Subject)
	c.Set(CtxRole, claims.Role)
	return next(c)
}

// BearerToken returns the token from an "Authorization: Bearer" header, or "".
func BearerToken(r *http.Request) string {
	h := r.Header.Get(echo.HeaderAuthorization)
	const prefix = "bearer "
	if len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
		return strings.TrimSpace(h[len(prefix):])
	}
	return ""
}

func clearAuthCookies(c echo.Context) {
	c.SetCookie(jwthelp.DeleteCookie(jwthelp.AccessCookie, "/"))
	c.SetCookie(jwthelp.DeleteCookie(jwthelp.RefreshCookie, "/"))
}

// UserID reads the authenticated principal set by the middleware.
func UserID(c echo.Context) (uuid.UUID, error) {
	s, ok := c.Get(CtxUserID).(string)
	if !ok || s == "" {
		return uuid.Nil, ErrUnauthorized
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, ErrUnauthorized
	}
	return id, nil
}

func Role(c echo.Context) string {
	r, _ := c.Get(CtxRole).(string)
	return r
}
