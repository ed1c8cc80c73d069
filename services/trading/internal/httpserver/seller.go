package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/tradefund/pkg/logging"
	"github.com/Skotchmaster/tradefund/services/trading/internal/service"
	"github.com/Skotchmaster/tradefund/services/trading/internal/transport"
)

type SellerHTTP struct {
	Svc *service.SellerService
}

func (h *SellerHTTP) GetMine(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "trading.get_my_seller_profile")

	a, err := actor(c)
	if err != nil {
		return err
	}
	p, err := h.Svc.GetProfile(ctx, a.ID)
	if err != nil {
		return fail(l, "get_my_seller_profile_error", err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *SellerHTTP) PutMine(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "trading.put_seller_profile")

	a, err := actor(c)
	if err != nil {
		return err
	}
	var req transport.SellerProfileRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "put_seller_profile_error", err)
	}
	p, err := h.Svc.UpsertProfile(ctx, a, req)
	if err != nil {
		return fail(l, "put_seller_profile_error", err)
	}
	l.Info("put_seller_profile_success")
	return c.JSON(http.StatusOK, p)
}

func (h *SellerHTTP) GetPublic(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "trading.get_seller_profile")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("get_seller_profile_error", "status", 400, "reason", "id not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id not a uuid")
	}
	p, err := h.Svc.GetProfile(ctx, id)
	if err != nil {
		return fail(l, "get_seller_profile_error", err)
	}
	return c.JSON(http.StatusOK, p)
}
