package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/tradefund/pkg/logging"
	"github.com/Skotchmaster/tradefund/services/trading/internal/service"
	"github.com/Skotchmaster/tradefund/services/trading/internal/transport"
)

type CartHTTP struct {
	Svc *service.CartService
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get_cart")

	a, err := actor(c)
	if err != nil {
		return err
	}
	items, err := h.Svc.GetCart(ctx, a)
	if err != nil {
		return fail(l, "get_cart_error", err)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

func (h *CartHTTP) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add_to_cart")

	a, err := actor(c)
	if err != nil {
		return err
	}
	var req transport.AddToCartRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "add_to_cart_error", err)
	}
	item, err := h.Svc.AddToCart(ctx, a, req)
	if err != nil {
		return fail(l, "add_to_cart_error", err)
	}

	l.Info("add_to_cart_success", "product_id", item.ProductID, "quantity", item.Quantity)
	return c.JSON(http.StatusCreated, item)
}

func (h *CartHTTP) SetQuantity(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.set_quantity")

	a, err := actor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, l, "set_quantity_error")
	if err != nil {
		return err
	}
	var req transport.SetCartQuantityRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "set_quantity_error", err)
	}
	item, err := h.Svc.SetQuantity(ctx, a, id, req.Quantity)
	if err != nil {
		return fail(l, "set_quantity_error", err)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *CartHTTP) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove_item")

	a, err := actor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, l, "remove_item_error")
	if err != nil {
		return err
	}
	if err := h.Svc.RemoveItem(ctx, a, id); err != nil {
		return fail(l, "remove_item_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CartHTTP) ClearCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.clear_cart")

	a, err := actor(c)
	if err != nil {
		return err
	}
	if err := h.Svc.ClearCart(ctx, a); err != nil {
		return fail(l, "clear_cart_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CartHTTP) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.checkout")

	a, err := actor(c)
	if err != nil {
		return err
	}
	var req transport.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "checkout_error", err)
	}
	order, err := h.Svc.Checkout(ctx, a, req)
	if err != nil {
		return fail(l, "checkout_error", err)
	}

	l.Info("checkout_success", "order_id", order.ID, "items", len(order.Items))
	return c.JSON(http.StatusCreated, order)
}
