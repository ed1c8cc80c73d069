package httpserver

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/tradefund/pkg/logging"
	"github.com/Skotchmaster/tradefund/pkg/pagination"
	"github.com/Skotchmaster/tradefund/services/trading/internal/models"
	"github.com/Skotchmaster/tradefund/services/trading/internal/service"
	"github.com/Skotchmaster/tradefund/services/trading/internal/transport"
)

type OrderHTTP struct {
	Svc       *service.OrderService
	Shipments *service.ShipmentService
}

func (h *OrderHTTP) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "trading.create_order")

	a, err := actor(c)
	if err != nil {
		return err
	}
	var req transport.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "create_order_error", err)
	}
	order, err := h.Svc.CreateOrder(ctx, a, req)
	if err != nil {
		return fail(l, "create_order_error", err)
	}

	l.Info("create_order_success", "order_id", order.ID)
	return c.JSON(http.StatusCreated, order)
}

func (h *OrderHTTP) CreateDraftOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "trading.create_draft_order")

	a, err := actor(c)
	if err != nil {
		return err
	}
	var req transport.CreateDraftOrderRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "create_draft_order_error", err)
	}
	order, err := h.Svc.CreateDraftOrder(ctx, a, req)
	if err != nil {
		return fail(l, "create_draft_order_error", err)
	}

	l.Info("create_draft_order_success", "order_id", order.ID, "items", len(order.Items))
	return c.JSON(http.StatusCreated, order)
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "trading.get_order")

	a, err := actor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, l, "get_order_error")
	if err != nil {
		return err
	}
	order, err := h.Svc.GetOrder(ctx, a, id)
	if err != nil {
		return fail(l, "get_order_error", err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "trading.list_orders")

	a, err := actor(c)
	if err != nil {
		return err
	}
	p := pagination.FromQuery(c)
	status := models.OrderStatus(strings.ToUpper(c.QueryParam("status")))
	total, items, err := h.Svc.ListOrders(ctx, a, status, p.Offset, p.Size)
	if err != nil {
		return fail(l, "list_orders_error", err)
	}
	return c.JSON(http.StatusOK, pagination.Body(p, total, items))
}

func (h *OrderHTTP) SetFixedPrices(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "trading.set_fixed_prices")

	a, err := actor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, l, "set_fixed_prices_error")
	if err != nil {
		return err
	}
	var req transport.SetFixedPricesRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "set_fixed_prices_error", err)
	}
	order, err := h.Svc.SetFixedPrices(ctx, a, id, req)
	if err != nil {
		return fail(l, "set_fixed_prices_error", err)
	}

	l.Info("set_fixed_prices_success", "order_id", id, "order_status", order.Status)
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "trading.update_order_status")

	a, err := actor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, l, "update_order_status_error")
	if err != nil {
		return err
	}
	var req transport.UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "update_order_status_error", err)
	}
	order, err := h.Svc.UpdateStatus(ctx, a, id, models.OrderStatus(strings.ToUpper(strings.TrimSpace(req.Status))))
	if err != nil {
		return fail(l, "update_order_status_error", err)
	}

	l.Info("update_order_status_success", "order_id", id, "order_status", order.Status)
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) GetShipment(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "trading.order_shipment")

	a, err := actor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, l, "order_shipment_error")
	if err != nil {
		return err
	}
	sh, err := h.Shipments.ShipmentForOrder(ctx, a, id)
	if err != nil {
		return fail(l, "order_shipment_error", err)
	}
	return c.JSON(http.StatusOK, sh)
}
