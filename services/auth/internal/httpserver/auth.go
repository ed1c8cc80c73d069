package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	jwthelp "github.com/Skotchmaster/tradefund/pkg/jwt"
	"github.com/Skotchmaster/tradefund/pkg/logging"
	"github.com/Skotchmaster/tradefund/services/auth/internal/service"
	"github.com/Skotchmaster/tradefund/services/auth/internal/transport"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func tokenResponse(res *service.LoginResult) transport.TokenResponse {
	return transport.TokenResponse{
		UserID:       res.UserID.String(),
		Role:         res.Role,
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		AccessExp:    res.AccessExp.Unix(),
		RefreshExp:   res.RefreshExp.Unix(),
	}
}

func setAuthCookies(c echo.Context, res *service.LoginResult) {
	c.SetCookie(jwthelp.CreateCookie(jwthelp.AccessCookie, res.AccessToken, "/", res.AccessExp))
	c.SetCookie(jwthelp.CreateCookie(jwthelp.RefreshCookie, res.RefreshToken, "/", res.RefreshExp))
}

func clearAuthCookies(c echo.Context) {
	c.SetCookie(jwthelp.DeleteCookie(jwthelp.RefreshCookie, "/"))
	c.SetCookie(jwthelp.DeleteCookie(jwthelp.AccessCookie, "/"))
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, err := h.Svc.Register(ctx, service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Role:     req.Role,
	})
	if err != nil {
		return fail(l, "register_error", err)
	}

	l.Info("register_success", "user_id", user.ID)
	return c.JSON(http.StatusCreated, user)
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return fail(l, "login_error", err)
	}

	setAuthCookies(c, res)
	l.Info("login_success", "user_id", res.UserID)
	return c.JSON(http.StatusOK, tokenResponse(res))
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.refresh")

	raw := ""
	if ck, err := c.Cookie(jwthelp.RefreshCookie); err == nil {
		raw = ck.Value
	}
	if raw == "" {
		var req transport.RefreshRequest
		if err := c.Bind(&req); err == nil {
			raw = req.RefreshToken
		}
	}
	if raw == "" {
		l.Warn("refresh_error", "status", 401, "reason", "refresh token missing")
		return echo.NewHTTPError(http.StatusUnauthorized, "refresh token missing")
	}

	res, err := h.Svc.Refresh(ctx, raw)
	if err != nil {
		clearAuthCookies(c)
		return fail(l, "refresh_error", err)
	}

	setAuthCookies(c, res)
	return c.JSON(http.StatusOK, tokenResponse(res))
}

func (h *AuthHTTP) LogOut(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.logout")

	raw := ""
	if ck, err := c.Cookie(jwthelp.RefreshCookie); err == nil {
		raw = ck.Value
	}
	if raw == "" {
		var req transport.RefreshRequest
		if err := c.Bind(&req); err == nil {
			raw = req.RefreshToken
		}
	}

	clearAuthCookies(c)
	if err := h.Svc.LogOut(ctx, raw); err != nil {
		l.Error("logout_error", "status", 500, "reason", "cannot revoke refresh token", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot revoke refresh token")
	}

	l.Info("logout_success")
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}
