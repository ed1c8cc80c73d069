package httpserver

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/tradefund/pkg/logging"
	"github.com/Skotchmaster/tradefund/pkg/pagination"
	"github.com/Skotchmaster/tradefund/services/billing/internal/models"
	"github.com/Skotchmaster/tradefund/services/billing/internal/repo"
	"github.com/Skotchmaster/tradefund/services/billing/internal/service"
	"github.com/Skotchmaster/tradefund/services/billing/internal/transport"
)

const SignatureHeader = "X-Signature"

type BillingHTTP struct {
	Svc *service.BillingService
}

func (h *BillingHTTP) Plans(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "billing.plans")

	plans, err := h.Svc.ListPlans(ctx)
	if err != nil {
		return fail(l, "list_plans_error", err)
	}
	return c.JSON(http.StatusOK, map[string]any{"data": plans})
}

func (h *BillingHTTP) Subscribe(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "billing.subscribe")

	a, err := actor(c)
	if err != nil {
		return err
	}
	var req transport.SubscribeRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "subscribe_error", err)
	}
	out, err := h.Svc.Subscribe(ctx, a, req)
	if err != nil {
		return fail(l, "subscribe_error", err)
	}

	l.Info("subscribe_success", "subscription_id", out.Subscription.ID, "plan", out.Subscription.PlanCode, "provider", out.Payment.Provider)
	return c.JSON(http.StatusCreated, out)
}

func (h *BillingHTTP) Mine(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "billing.mine")

	a, err := actor(c)
	if err != nil {
		return err
	}
	subs, err := h.Svc.Mine(ctx, a)
	if err != nil {
		return fail(l, "my_subscriptions_error", err)
	}
	return c.JSON(http.StatusOK, map[string]any{"data": subs})
}

func (h *BillingHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "billing.get")

	a, err := actor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, l, "get_subscription_error")
	if err != nil {
		return err
	}
	sub, pays, err := h.Svc.Get(ctx, a, id)
	if err != nil {
		return fail(l, "get_subscription_error", err)
	}
	return c.JSON(http.StatusOK, map[string]any{"subscription": sub, "payments": pays})
}

func (h *BillingHTTP) Cancel(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "billing.cancel")

	a, err := actor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, l, "cancel_subscription_error")
	if err != nil {
		return err
	}
	sub, err := h.Svc.Cancel(ctx, a, id)
	if err != nil {
		return fail(l, "cancel_subscription_error", err)
	}

	l.Info("cancel_subscription_success", "subscription_id", sub.ID)
	return c.JSON(http.StatusOK, sub)
}

// Callback is called by the payment provider, not by users; the body must carry a valid signature.
func (h *BillingHTTP) Callback(c echo.Context) error {
	ctx := c.Request().Context()
	provider := c.Param("provider")
	l := logging.FromContext(ctx).With("handler", "billing.callback", "provider", provider)

	raw, err := io.ReadAll(io.LimitReader(c.Request().Body, 64<<10))
	if err != nil {
		return badBody(l, "payment_callback_error", err)
	}
	if err := h.Svc.VerifySignature(raw, c.Request().Header.Get(SignatureHeader)); err != nil {
		return fail(l, "payment_callback_error", err)
	}
	var req transport.CallbackRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return badBody(l, "payment_callback_error", err)
	}
	sub, err := h.Svc.HandleCallback(ctx, provider, req, raw)
	if err != nil {
		return fail(l, "payment_callback_error", err)
	}

	l.Info("payment_callback_success", "provider_ref", req.ProviderRef, "subscription_id", sub.ID, "subscription_status", sub.Status)
	return c.JSON(http.StatusOK, map[string]any{"subscription_id": sub.ID, "status": sub.Status})
}

func (h *BillingHTTP) Payments(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "billing.payments")

	f := repo.PaymentFilter{
		Status:   models.PaymentStatus(c.QueryParam("status")),
		Provider: c.QueryParam("provider"),
	}
	if v := c.QueryParam("user_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			l.Warn("list_payments_error", "status", 400, "reason", "user_id not a uuid", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "user_id not a uuid")
		}
		f.UserID = &id
	}
	p := pagination.FromQuery(c)
	total, items, err := h.Svc.ListPayments(ctx, f, p.Offset, p.Size)
	if err != nil {
		return fail(l, "list_payments_error", err)
	}
	return c.JSON(http.StatusOK, pagination.Body(p, total, items))
}
