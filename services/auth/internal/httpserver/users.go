package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/tradefund/pkg/logging"
	authmw "github.com/Skotchmaster/tradefund/pkg/middleware/auth"
	"github.com/Skotchmaster/tradefund/pkg/pagination"
	"github.com/Skotchmaster/tradefund/services/auth/internal/repo"
	"github.com/Skotchmaster/tradefund/services/auth/internal/service"
	"github.com/Skotchmaster/tradefund/services/auth/internal/transport"
)

func (h *AuthHTTP) Me(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.me")

	userID, err := authmw.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	user, err := h.Svc.Me(ctx, userID)
	if err != nil {
		return fail(l, "me_error", err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AuthHTTP) PatchMe(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.patch_me")

	userID, err := authmw.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	var req transport.PatchProfileRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("patch_me_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	user, err := h.Svc.UpdateProfile(ctx, userID, req)
	if err != nil {
		return fail(l, "patch_me_error", err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AuthHTTP) SubmitKYC(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.submit_kyc")

	userID, err := authmw.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	var req transport.KYCSubmitRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("submit_kyc_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	user, err := h.Svc.SubmitKYC(ctx, userID, req.DocumentURL)
	if err != nil {
		return fail(l, "submit_kyc_error", err)
	}
	l.Info("submit_kyc_success")
	return c.JSON(http.StatusOK, user)
}

func (h *AuthHTTP) ReviewKYC(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.review_kyc")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("review_kyc_error", "status", 400, "reason", "id not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id not a uuid")
	}
	var req transport.KYCReviewRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("review_kyc_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	user, err := h.Svc.ReviewKYC(ctx, id, req.Approve, req.Note)
	if err != nil {
		return fail(l, "review_kyc_error", err)
	}
	l.Info("review_kyc_success", "user_id", id, "kyc_status", user.KYCStatus)
	return c.JSON(http.StatusOK, user)
}

func (h *AuthHTTP) ListUsers(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.list_users")

	p := pagination.FromQuery(c)
	total, items, err := h.Svc.ListUsers(ctx, repo.UserFilter{
		Role:      c.QueryParam("role"),
		KYCStatus: c.QueryParam("kyc_status"),
		Query:     c.QueryParam("q"),
	}, p.Offset, p.Size)
	if err != nil {
		return fail(l, "list_users_error", err)
	}
	return c.JSON(http.StatusOK, pagination.Body(p, total, items))
}

func (h *AuthHTTP) CreateUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.create_user")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_user_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	user, err := h.Svc.CreateUser(ctx, service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Role:     req.Role,
	})
	if err != nil {
		return fail(l, "create_user_error", err)
	}
	l.Info("create_user_success", "user_id", user.ID, "role", user.Role)
	return c.JSON(http.StatusCreated, user)
}
