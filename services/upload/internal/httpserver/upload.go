package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/tradefund/pkg/logging"
	authmw "github.com/Skotchmaster/tradefund/pkg/middleware/auth"
	"github.com/Skotchmaster/tradefund/services/upload/internal/service"
)

type UploadHTTP struct {
	Svc *service.UploadService
}

// Upload takes a multipart form with the file in the "file" field.
func (h *UploadHTTP) Upload(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "upload.upload")

	id, err := authmw.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	a := service.Actor{ID: id, Role: authmw.Role(c)}
	category := c.Param("category")

	fh, err := c.FormFile("file")
	if err != nil {
		l.Warn("upload_error", "status", 400, "reason", "file field missing", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "multipart field \"file\" is required")
	}
	f, err := fh.Open()
	if err != nil {
		l.Error("upload_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	defer f.Close()

	stored, err := h.Svc.Upload(ctx, a, category, f)
	if err != nil {
		code := http.StatusInternalServerError
		switch {
		case errors.Is(err, service.ErrValidation):
			code = http.StatusBadRequest
		case errors.Is(err, service.ErrForbidden):
			code = http.StatusForbidden
		case errors.Is(err, service.ErrNotFound):
			code = http.StatusNotFound
		}
		if code == http.StatusInternalServerError {
			l.Error("upload_error", "status", code, "category", category, "error", err)
			return echo.NewHTTPError(code, "internal error")
		}
		l.Warn("upload_error", "status", code, "category", category, "error", err)
		return echo.NewHTTPError(code, err.Error())
	}

	l.Info("upload_success", "url", stored.URL, "original_name", fh.Filename)
	return c.JSON(http.StatusCreated, stored)
}
