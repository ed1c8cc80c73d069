package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/tradefund/pkg/logging"
	"github.com/Skotchmaster/tradefund/pkg/pagination"
	"github.com/Skotchmaster/tradefund/services/investment/internal/service"
	"github.com/Skotchmaster/tradefund/services/investment/internal/transport"
)

type DividendHTTP struct {
	Svc *service.DividendService
}

func (h *DividendHTTP) Distribute(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "investment.distribute_dividend")

	a, err := actor(c)
	if err != nil {
		return err
	}
	projectID, err := pathID(c, l, "distribute_dividend_error")
	if err != nil {
		return err
	}
	var req transport.DistributeRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "distribute_dividend_error", err)
	}
	d, err := h.Svc.Distribute(ctx, a, projectID, req)
	if err != nil {
		return fail(l, "distribute_dividend_error", err)
	}

	l.Info("distribute_dividend_success", "dividend_id", d.ID, "payouts", len(d.Payouts))
	return c.JSON(http.StatusCreated, d)
}

func (h *DividendHTTP) ListForProject(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "investment.list_dividends")

	a, err := actor(c)
	if err != nil {
		return err
	}
	projectID, err := pathID(c, l, "list_dividends_error")
	if err != nil {
		return err
	}
	items, err := h.Svc.ListForProject(ctx, a, projectID)
	if err != nil {
		return fail(l, "list_dividends_error", err)
	}
	return c.JSON(http.StatusOK, map[string]any{"data": items})
}

func (h *DividendHTTP) MyPayouts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "investment.my_payouts")

	a, err := actor(c)
	if err != nil {
		return err
	}
	p := pagination.FromQuery(c)
	total, items, err := h.Svc.MyPayouts(ctx, a, p.Offset, p.Size)
	if err != nil {
		return fail(l, "my_payouts_error", err)
	}
	return c.JSON(http.StatusOK, pagination.Body(p, total, items))
}
