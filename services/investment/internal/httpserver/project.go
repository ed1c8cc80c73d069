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

type ProjectHTTP struct {
	Svc *service.ProjectService
}

func (h *ProjectHTTP) CreateProject(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "investment.create_project")

	a, err := actor(c)
	if err != nil {
		return err
	}
	var req transport.CreateProjectRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "create_project_error", err)
	}
	p, err := h.Svc.CreateProject(ctx, a, req)
	if err != nil {
		return fail(l, "create_project_error", err)
	}

	l.Info("create_project_success", "project_id", p.ID)
	return c.JSON(http.StatusCreated, p)
}

func (h *ProjectHTTP) PatchProject(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "investment.patch_project")

	a, err := actor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, l, "patch_project_error")
	if err != nil {
		return err
	}
	var req transport.PatchProjectRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "patch_project_error", err)
	}
	p, err := h.Svc.UpdateProject(ctx, a, id, req)
	if err != nil {
		return fail(l, "patch_project_error", err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProjectHTTP) GetProject(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "investment.get_project")

	id, err := pathID(c, l, "get_project_error")
	if err != nil {
		return err
	}
	p, err := h.Svc.GetProject(ctx, viewer(c), id)
	if err != nil {
		return fail(l, "get_project_error", err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProjectHTTP) ListPublic(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "investment.list_projects")

	p := pagination.FromQuery(c)
	status := models.ProjectStatus(strings.ToUpper(c.QueryParam("status")))
	total, items, err := h.Svc.ListPublic(ctx, status, c.QueryParam("sector"), c.QueryParam("q"), p.Offset, p.Size)
	if err != nil {
		return fail(l, "list_projects_error", err)
	}
	return c.JSON(http.StatusOK, pagination.Body(p, total, items))
}

func (h *ProjectHTTP) ListMine(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "investment.list_my_projects")

	a, err := actor(c)
	if err != nil {
		return err
	}
	p := pagination.FromQuery(c)
	total, items, err := h.Svc.ListMine(ctx, a, p.Offset, p.Size)
	if err != nil {
		return fail(l, "list_my_projects_error", err)
	}
	return c.JSON(http.StatusOK, pagination.Body(p, total, items))
}

func (h *ProjectHTTP) ListForReview(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "investment.review_queue")

	a, err := actor(c)
	if err != nil {
		return err
	}
	p := pagination.FromQuery(c)
	status := models.ProjectStatus(strings.ToUpper(c.QueryParam("status")))
	total, items, err := h.Svc.ListForReview(ctx, a, status, p.Offset, p.Size)
	if err != nil {
		return fail(l, "review_queue_error", err)
	}
	return c.JSON(http.StatusOK, pagination.Body(p, total, items))
}

// Transition handles the submit, approve, reject and close actions, picked by the route.
func (h *ProjectHTTP) Transition(action string) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		l := logging.FromContext(ctx).With("handler", "investment."+action+"_project")
		event := action + "_project_error"

		a, err := actor(c)
		if err != nil {
			return err
		}
		id, err := pathID(c, l, event)
		if err != nil {
			return err
		}

		var p *models.Project
		switch action {
		case "submit":
			p, err = h.Svc.SubmitProject(ctx, a, id)
		case "approve":
			p, err = h.Svc.ApproveProject(ctx, a, id)
		case "close":
			p, err = h.Svc.CloseProject(ctx, a, id)
		case "reject":
			var req transport.RejectRequest
			if err := c.Bind(&req); err != nil {
				return badBody(l, event, err)
			}
			p, err = h.Svc.RejectProject(ctx, a, id, req.Reason)
		default:
			return echo.NewHTTPError(http.StatusNotFound)
		}
		if err != nil {
			return fail(l, event, err)
		}

		l.Info(action+"_project_success", "project_id", p.ID, "project_status", p.Status)
		return c.JSON(http.StatusOK, p)
	}
}
