package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/tradefund/pkg/logging"
	authmw "github.com/Skotchmaster/tradefund/pkg/middleware/auth"
	"github.com/Skotchmaster/tradefund/pkg/roles"
	"github.com/Skotchmaster/tradefund/services/dashboard/internal/service"
)

type DashboardHTTP struct {
	Svc *service.DashboardService
}

func months(c echo.Context) (int, error) {
	n := 0
	if v := c.QueryParam("months"); v != "" {
		var err error
		if n, err = strconv.Atoi(v); err != nil {
			return 0, fmt.Errorf("%w: months must be a number", service.ErrValidation)
		}
	}
	return service.Months(n)
}

// subject is whose dashboard is shown: the caller when they hold the role,
// otherwise the ?user_id= a staff member asked for.
func subject(c echo.Context, role string) (uuid.UUID, error) {
	id, err := authmw.UserID(c)
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if authmw.Role(c) == role {
		return id, nil
	}
	other, err := uuid.Parse(c.QueryParam("user_id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "user_id is required")
	}
	return other, nil
}

func personal[T any](c echo.Context, name, role string, build func(context.Context, uuid.UUID, int) (T, error)) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "dashboard."+name)

	id, err := subject(c, role)
	if err != nil {
		return err
	}
	n, err := months(c)
	if err != nil {
		return fail(l, "dashboard_error", err)
	}
	out, err := build(ctx, id, n)
	if err != nil {
		return fail(l, "dashboard_error", err)
	}
	return c.JSON(http.StatusOK, out)
}

func global[T any](c echo.Context, name string, build func(context.Context, int) (T, error)) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "dashboard."+name)

	n, err := months(c)
	if err != nil {
		return fail(l, "dashboard_error", err)
	}
	out, err := build(ctx, n)
	if err != nil {
		return fail(l, "dashboard_error", err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *DashboardHTTP) Investor(c echo.Context) error {
	return personal(c, "investor", roles.Investor, h.Svc.Investor)
}

func (h *DashboardHTTP) Owner(c echo.Context) error {
	return personal(c, "owner", roles.ProjectOwner, h.Svc.Owner)
}

func (h *DashboardHTTP) Buyer(c echo.Context) error {
	return personal(c, "buyer", roles.Buyer, h.Svc.Buyer)
}

func (h *DashboardHTTP) Seller(c echo.Context) error {
	return personal(c, "seller", roles.Seller, h.Svc.Seller)
}

func (h *DashboardHTTP) TradingAdmin(c echo.Context) error {
	return global(c, "trading_admin", h.Svc.TradingAdmin)
}

func (h *DashboardHTTP) InvestmentAdmin(c echo.Context) error {
	return global(c, "investment_admin", h.Svc.InvestmentAdmin)
}

func (h *DashboardHTTP) Billing(c echo.Context) error {
	return global(c, "billing", h.Svc.Billing)
}

func (h *DashboardHTTP) Overview(c echo.Context) error {
	return global(c, "overview", h.Svc.Overview)
}

// Me picks the dashboard that matches the caller's role.
func (h *DashboardHTTP) Me(c echo.Context) error {
	switch authmw.Role(c) {
	case roles.Investor:
		return h.Investor(c)
	case roles.ProjectOwner:
		return h.Owner(c)
	case roles.Buyer:
		return h.Buyer(c)
	case roles.Seller:
		return h.Seller(c)
	case roles.TradingAdmin:
		return h.TradingAdmin(c)
	case roles.InvestmentAdmin:
		return h.InvestmentAdmin(c)
	case roles.SuperAdmin:
		return h.Overview(c)
	}
	return echo.NewHTTPError(http.StatusForbidden, "no dashboard for this role")
}
