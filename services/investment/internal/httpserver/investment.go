package httpserver

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/tradefund/pkg/logging"
	"github.com/Skotchmaster/tradefund/pkg/pagination"
	"github.com/Skotchmaster/tradefund/services/investment/internal/models"
	"github.com/Skotchmaster/tradefund/services/investment/internal/service"
	"github.com/Skotchmaster/tradefund/services/investment/internal/transport"
)

type InvestmentHTTP struct {
	Svc *service.InvestmentService
}

func (h *InvestmentHTTP) Invest(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "investment.invest")

	a, err := actor(c)
	if err != nil {
		return err
	}
	projectID, err := pathID(c, l, "invest_error")
	if err != nil {
		return err
	}
	var req transport.InvestRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "invest_error", err)
	}
	inv, err := h.Svc.Invest(ctx, a, projectID, req)
	if err != nil {
		return fail(l, "invest_error", err)
	}

	l.Info("invest_success", "investment_id", inv.ID, "project_id", projectID)
	return c.JSON(http.StatusCreated, inv)
}

func (h *InvestmentHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "investment.get_investment")

	a, err := actor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, l, "get_investment_error")
	if err != nil {
		return err
	}
	inv, err := h.Svc.Get(ctx, a, id)
	if err != nil {
		return fail(l, "get_investment_error", err)
	}
	return c.JSON(http.StatusOK, inv)
}

func (h *InvestmentHTTP) ListMine(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "investment.list_my_investments")

	a, err := actor(c)
	if err != nil {
		return err
	}
	p := pagination.FromQuery(c)
	status := models.InvestmentStatus(strings.ToUpper(c.QueryParam("status")))
	total, items, err := h.Svc.ListMine(ctx, a, status, p.Offset, p.Size)
	if err != nil {
		return fail(l, "list_my_investments_error", err)
	}
	return c.JSON(http.StatusOK, pagination.Body(p, total, items))
}

func (h *InvestmentHTTP) ListForProject(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "investment.list_project_investments")

	a, err := actor(c)
	if err != nil {
		return err
	}
	projectID, err := pathID(c, l, "list_project_investments_error")
	if err != nil {
		return err
	}
	p := pagination.FromQuery(c)
	status := models.InvestmentStatus(strings.ToUpper(c.QueryParam("status")))
	total, items, err := h.Svc.ListForProject(ctx, a, projectID, status, p.Offset, p.Size)
	if err != nil {
		return fail(l, "list_project_investments_error", err)
	}
	return c.JSON(http.StatusOK, pagination.Body(p, total, items))
}

func (h *InvestmentHTTP) ListForReview(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "investment.investment_queue")

	a, err := actor(c)
	if err != nil {
		return err
	}
	p := pagination.FromQuery(c)
	status := models.InvestmentStatus(strings.ToUpper(c.QueryParam("status")))
	total, items, err := h.Svc.ListForReview(ctx, a, status, p.Offset, p.Size)
	if err != nil {
		return fail(l, "investment_queue_error", err)
	}
	return c.JSON(http.StatusOK, pagination.Body(p, total, items))
}

func (h *InvestmentHTTP) Confirm(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "investment.confirm_investment")

	a, err := actor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, l, "confirm_investment_error")
	if err != nil {
		return err
	}
	inv, err := h.Svc.Confirm(ctx, a, id)
	if err != nil {
		return fail(l, "confirm_investment_error", err)
	}

	l.Info("confirm_investment_success", "investment_id", id)
	return c.JSON(http.StatusOK, inv)
}

func (h *InvestmentHTTP) Reject(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "investment.reject_investment")

	a, err := actor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, l, "reject_investment_error")
	if err != nil {
		return err
	}
	var req transport.RejectRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "reject_investment_error", err)
	}
	inv, err := h.Svc.Reject(ctx, a, id, req.Reason)
	if err != nil {
		return fail(l, "reject_investment_error", err)
	}
	return c.JSON(http.StatusOK, inv)
}
