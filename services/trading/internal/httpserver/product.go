package httpserver

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/tradefund/pkg/logging"
	"github.com/Skotchmaster/tradefund/pkg/pagination"
	"github.com/Skotchmaster/tradefund/services/trading/internal/models"
	"github.com/Skotchmaster/tradefund/services/trading/internal/service"
	"github.com/Skotchmaster/tradefund/services/trading/internal/transport"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "trading.get_product")

	id, err := pathID(c, l, "get_product_error")
	if err != nil {
		return err
	}
	p, err := h.Svc.GetProduct(ctx, viewer(c), id)
	if err != nil {
		return fail(l, "get_product_error", err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *CatalogHTTP) ListApproved(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "trading.list_products")

	var sellerID *uuid.UUID
	if raw := c.QueryParam("seller_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			l.Warn("list_products_error", "status", 400, "reason", "seller_id not a uuid", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "seller_id not a uuid")
		}
		sellerID = &id
	}
	p := pagination.FromQuery(c)
	total, items, err := h.Svc.ListApproved(ctx, sellerID, p.Offset, p.Size)
	if err != nil {
		return fail(l, "list_products_error", err)
	}
	return c.JSON(http.StatusOK, pagination.Body(p, total, items))
}

func (h *CatalogHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "trading.search_products")

	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		l.Warn("search_products_error", "status", 400, "reason", "empty query")
		return echo.NewHTTPError(http.StatusBadRequest, "q required")
	}
	p := pagination.FromQuery(c)
	total, items, err := h.Svc.Search(ctx, q, p.Offset, p.Size)
	if err != nil {
		return fail(l, "search_products_error", err)
	}
	return c.JSON(http.StatusOK, pagination.Body(p, total, items))
}

func (h *CatalogHTTP) ListMine(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "trading.list_my_products")

	a, err := actor(c)
	if err != nil {
		return err
	}
	p := pagination.FromQuery(c)
	total, items, err := h.Svc.ListMine(ctx, a, models.ProductStatus(strings.ToUpper(c.QueryParam("status"))), p.Offset, p.Size)
	if err != nil {
		return fail(l, "list_my_products_error", err)
	}
	return c.JSON(http.StatusOK, pagination.Body(p, total, items))
}

func (h *CatalogHTTP) ListForModeration(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "trading.moderation_queue")

	a, err := actor(c)
	if err != nil {
		return err
	}
	p := pagination.FromQuery(c)
	total, items, err := h.Svc.ListForModeration(ctx, a, models.ProductStatus(strings.ToUpper(c.QueryParam("status"))), p.Offset, p.Size)
	if err != nil {
		return fail(l, "moderation_queue_error", err)
	}
	return c.JSON(http.StatusOK, pagination.Body(p, total, items))
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "trading.create_product")

	a, err := actor(c)
	if err != nil {
		return err
	}
	var req transport.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "create_product_error", err)
	}
	p, err := h.Svc.CreateProduct(ctx, a, req)
	if err != nil {
		return fail(l, "create_product_error", err)
	}

	l.Info("create_product_success", "product_id", p.ID)
	return c.JSON(http.StatusCreated, p)
}

func (h *CatalogHTTP) PatchProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "trading.patch_product")

	a, err := actor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, l, "patch_product_error")
	if err != nil {
		return err
	}
	var req transport.PatchProductRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "patch_product_error", err)
	}
	p, err := h.Svc.UpdateProduct(ctx, a, id, req)
	if err != nil {
		return fail(l, "patch_product_error", err)
	}

	l.Info("patch_product_success", "product_id", p.ID, "product_status", p.Status)
	return c.JSON(http.StatusOK, p)
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "trading.delete_product")

	a, err := actor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, l, "delete_product_error")
	if err != nil {
		return err
	}
	if err := h.Svc.DeleteProduct(ctx, a, id); err != nil {
		return fail(l, "delete_product_error", err)
	}

	l.Info("delete_product_success", "product_id", id)
	return c.NoContent(http.StatusNoContent)
}

func (h *CatalogHTTP) ApproveProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "trading.approve_product")

	a, err := actor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, l, "approve_product_error")
	if err != nil {
		return err
	}
	p, err := h.Svc.ApproveProduct(ctx, a, id)
	if err != nil {
		return fail(l, "approve_product_error", err)
	}

	l.Info("approve_product_success", "product_id", id)
	return c.JSON(http.StatusOK, p)
}

func (h *CatalogHTTP) RejectProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "trading.reject_product")

	a, err := actor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, l, "reject_product_error")
	if err != nil {
		return err
	}
	var req transport.RejectRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "reject_product_error", err)
	}
	p, err := h.Svc.RejectProduct(ctx, a, id, req.Reason)
	if err != nil {
		return fail(l, "reject_product_error", err)
	}

	l.Info("reject_product_success", "product_id", id)
	return c.JSON(http.StatusOK, p)
}
