package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/tradefund/pkg/logging"
	"github.com/Skotchmaster/tradefund/services/investment/internal/service"
	"github.com/Skotchmaster/tradefund/services/investment/internal/transport"
)

type ReportHTTP struct {
	Svc *service.ReportService
}

func (h *ReportHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "investment.create_report")

	a, err := actor(c)
	if err != nil {
		return err
	}
	projectID, err := pathID(c, l, "create_report_error")
	if err != nil {
		return err
	}
	var req transport.ReportRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "create_report_error", err)
	}
	rep, err := h.Svc.Create(ctx, a, projectID, req)
	if err != nil {
		return fail(l, "create_report_error", err)
	}
	return c.JSON(http.StatusCreated, rep)
}

func (h *ReportHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "investment.list_reports")

	a, err := actor(c)
	if err != nil {
		return err
	}
	projectID, err := pathID(c, l, "list_reports_error")
	if err != nil {
		return err
	}
	items, err := h.Svc.List(ctx, a, projectID)
	if err != nil {
		return fail(l, "list_reports_error", err)
	}
	return c.JSON(http.StatusOK, map[string]any{"data": items})
}

func (h *ReportHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "investment.get_report")

	a, err := actor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, l, "get_report_error")
	if err != nil {
		return err
	}
	rep, err := h.Svc.Get(ctx, a, id)
	if err != nil {
		return fail(l, "get_report_error", err)
	}
	return c.JSON(http.StatusOK, rep)
}

func (h *ReportHTTP) Patch(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "investment.patch_report")

	a, err := actor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, l, "patch_report_error")
	if err != nil {
		return err
	}
	var req transport.PatchReportRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "patch_report_error", err)
	}
	rep, err := h.Svc.Update(ctx, a, id, req)
	if err != nil {
		return fail(l, "patch_report_error", err)
	}
	return c.JSON(http.StatusOK, rep)
}

func (h *ReportHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "investment.delete_report")

	a, err := actor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, l, "delete_report_error")
	if err != nil {
		return err
	}
	if err := h.Svc.Delete(ctx, a, id); err != nil {
		return fail(l, "delete_report_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}
