package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/labstack/echo/v4"

	jwthelp "github.com/Skotchmaster/tradefund/pkg/jwt"
	"github.com/Skotchmaster/tradefund/pkg/logging"
	authmw "github.com/Skotchmaster/tradefund/pkg/middleware/auth"
	"github.com/Skotchmaster/tradefund/pkg/tokens"
)

const (
	CtxUserID = "user_id"
	CtxRole   = "role"
	// CtxStale marks a request whose access token is missing or expired
	// but which still carries a refresh cookie.
	CtxStale = "stale_session"
)

// Identify reads the access token from the Authorization header or the access
// cookie. It never rejects; Gate decides what an anonymous caller may reach.
func Identify(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := authmw.BearerToken(c.Request())
			if raw == "" {
				if ck, err := c.Cookie(jwthelp.AccessCookie); err == nil {
					raw = ck.Value
				}
			}
			if raw != "" {
				if claims, err := tokens.AccessClaimsFromToken(raw, secret); err == nil && claims.Subject != "" {
					c.Set(CtxUserID, claims.Subject)
					c.Set(CtxRole, claims.Role)
					return next(c)
				}
			}
			if ck, err := c.Cookie(jwthelp.RefreshCookie); err == nil && ck.Value != "" {
				c.Set(CtxStale, true)
			}
			return next(c)
		}
	}
}

// Rule gates every path under Prefix. An empty Methods list matches every method.
type Rule struct {
	Prefix  string
	Methods []string
	Public  bool
	Roles   []string
}

func (r Rule) matches(method, path string) bool {
	if path != r.Prefix && !strings.HasPrefix(path, strings.TrimSuffix(r.Prefix, "/")+"/") {
		return false
	}
	return len(r.Methods) == 0 || slices.Contains(r.Methods, method)
}

// Gate applies the first matching rule. Paths without a rule need a signed-in caller.
// A stale session is let through so the service can refresh it and decide.
func Gate(rules []Rule) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			var rule *Rule
			for i := range rules {
				if rules[i].matches(req.Method, req.URL.Path) {
					rule = &rules[i]
					break
				}
			}
			if rule != nil && rule.Public {
				return next(c)
			}

			role, _ := c.Get(CtxRole).(string)
			if role == "" {
				if stale, _ := c.Get(CtxStale).(bool); stale {
					return next(c)
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
			}
			if rule != nil && len(rule.Roles) > 0 && !slices.Contains(rule.Roles, role) {
				logging.FromContext(req.Context()).Warn("gateway_forbidden", "status", 403, "path", req.URL.Path, "role", role)
				return echo.NewHTTPError(http.StatusForbidden, "you don't have enough rights to see this page")
			}
			return next(c)
		}
	}
}
