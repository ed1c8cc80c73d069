package pagination

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type Page struct {
	Page   int
	Size   int
	Offset int
}

func ParseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func Calculate(page, size int) (offset int, limit int) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > MaxPageSize {
		size = DefaultPageSize
	}
	return (page - 1) * size, size
}

// FromQuery reads ?page= and ?size= from the request.
func FromQuery(c echo.Context) Page {
	page := ParseIntDefault(c.QueryParam("page"), 1)
	if page < 1 {
		page = 1
	}
	offset, limit := Calculate(page, ParseIntDefault(c.QueryParam("size"), DefaultPageSize))
	return Page{Page: page, Size: limit, Offset: offset}
}

// Body builds the {"data": ..., "meta": ...} list response.
func Body(p Page, total int64, items any) map[string]any {
	return map[string]any{
		"data": items,
		"meta": map[string]any{
			"page":        p.Page,
			"size":        p.Size,
			"total":       total,
			"total_pages": (total + int64(p.Size) - 1) / int64(p.Size),
			"has_prev":    p.Page > 1,
			"has_next":    int64(p.Offset+p.Size) < total,
		},
	}
}
