package httpserver

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/tradefund/pkg/logging"
	"github.com/Skotchmaster/tradefund/services/upload/internal/service"
)

// FilesHTTP serves stored uploads back under /uploads/{category}/{name}.
type FilesHTTP struct {
	Root string
}

func (h *FilesHTTP) serve(c echo.Context, category string) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "upload.file")

	name := c.Param("name")
	if _, ok := service.Lookup(category); !ok || name == "" || strings.HasPrefix(name, ".") || strings.ContainsAny(name, `/\`) {
		return echo.NewHTTPError(http.StatusNotFound, "file not found")
	}
	f, err := os.Open(filepath.Join(h.Root, category, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return echo.NewHTTPError(http.StatusNotFound, "file not found")
		}
		l.Error("serve_file_error", "status", 500, "category", category, "file", name, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil || fi.IsDir() {
		return echo.NewHTTPError(http.StatusNotFound, "file not found")
	}

	c.Response().Header().Set("X-Content-Type-Options", "nosniff")
	http.ServeContent(c.Response(), c.Request(), name, fi.ModTime(), f)
	return nil
}

// Public serves every category except identity documents.
func (h *FilesHTTP) Public(c echo.Context) error {
	category := c.Param("category")
	if category == "kyc" {
		return echo.NewHTTPError(http.StatusNotFound, "file not found")
	}
	return h.serve(c, category)
}

func (h *FilesHTTP) KYC(c echo.Context) error {
	return h.serve(c, "kyc")
}
