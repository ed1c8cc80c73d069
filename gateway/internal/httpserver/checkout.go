package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	jwthelp "github.com/Skotchmaster/tradefund/pkg/jwt"
	"github.com/Skotchmaster/tradefund/pkg/logging"
	authmw "github.com/Skotchmaster/tradefund/pkg/middleware/auth"
	"github.com/Skotchmaster/tradefund/pkg/tradingclient"
)

// CheckoutHTTP places a buyer's multi-line order through the trading service,
// degrading to single-line orders when the draft endpoint is not deployed.
type CheckoutHTTP struct {
	Trading *tradingclient.Client
}

func callerToken(c echo.Context) string {
	if tok := authmw.BearerToken(c.Request()); tok != "" {
		return tok
	}
	if ck, err := c.Cookie(jwthelp.AccessCookie); err == nil {
		return ck.Value
	}
	return ""
}

func (h *CheckoutHTTP) PlaceOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "gateway.place_orders")

	var req tradingclient.DraftRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("place_orders_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if len(req.Items) == 0 {
		l.Warn("place_orders_error", "status", 400, "reason", "no items")
		return echo.NewHTTPError(http.StatusBadRequest, "items are required")
	}

	ids, err := h.Trading.PlaceOrders(ctx, callerToken(c), req)
	if err != nil {
		if len(ids) > 0 {
			l.Error("place_orders_partial", "status", 502, "created", len(ids), "error", err)
			return c.JSON(http.StatusBadGateway, map[string]any{"order_ids": ids, "message": "some orders could not be created"})
		}
		var se *tradingclient.StatusError
		if errors.As(err, &se) && se.Code < http.StatusInternalServerError {
			l.Warn("place_orders_error", "status", se.Code, "error", err)
			return echo.NewHTTPError(se.Code, se.Body)
		}
		l.Error("place_orders_error", "status", 502, "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "trading service unavailable")
	}

	l.Info("place_orders_success", "orders", len(ids))
	return c.JSON(http.StatusCreated, map[string]any{"order_ids": ids})
}
