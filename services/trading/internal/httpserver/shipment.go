package httpserver

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/tradefund/pkg/logging"
	"github.com/Skotchmaster/tradefund/services/trading/internal/models"
	"github.com/Skotchmaster/tradefund/services/trading/internal/service"
	"github.com/Skotchmaster/tradefund/services/trading/internal/transport"
)

type ShipmentHTTP struct {
	Svc *service.ShipmentService
}

func (h *ShipmentHTTP) CreateShipment(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "trading.create_shipment")

	a, err := actor(c)
	if err != nil {
		return err
	}
	var req transport.CreateShipmentRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "create_shipment_error", err)
	}
	sh, err := h.Svc.CreateShipment(ctx, a, req)
	if err != nil {
		return fail(l, "create_shipment_error", err)
	}

	l.Info("create_shipment_success", "shipment_id", sh.ID, "order_id", sh.OrderID)
	return c.JSON(http.StatusCreated, sh)
}

func (h *ShipmentHTTP) GetShipment(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "trading.get_shipment")

	a, err := actor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, l, "get_shipment_error")
	if err != nil {
		return err
	}
	sh, err := h.Svc.GetShipment(ctx, a, id)
	if err != nil {
		return fail(l, "get_shipment_error", err)
	}
	return c.JSON(http.StatusOK, sh)
}

func (h *ShipmentHTTP) PatchShipment(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "trading.patch_shipment")

	a, err := actor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, l, "patch_shipment_error")
	if err != nil {
		return err
	}
	var req transport.PatchShipmentRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "patch_shipment_error", err)
	}
	sh, err := h.Svc.UpdateShipment(ctx, a, id, req)
	if err != nil {
		return fail(l, "patch_shipment_error", err)
	}

	l.Info("patch_shipment_success", "shipment_id", id)
	return c.JSON(http.StatusOK, sh)
}

func (h *ShipmentHTTP) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "trading.update_shipment_status")

	a, err := actor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, l, "update_shipment_status_error")
	if err != nil {
		return err
	}
	var req transport.UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "update_shipment_status_error", err)
	}
	sh, err := h.Svc.UpdateShipmentStatus(ctx, a, id, models.ShipmentStatus(strings.ToUpper(strings.TrimSpace(req.Status))))
	if err != nil {
		return fail(l, "update_shipment_status_error", err)
	}

	l.Info("update_shipment_status_success", "shipment_id", id, "shipment_status", sh.Status)
	return c.JSON(http.StatusOK, sh)
}
