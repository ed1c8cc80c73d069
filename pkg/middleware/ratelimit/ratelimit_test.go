package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestLimiter_AllowPerKey(t *testing.T) {
	t.Parallel()

	l := New(1, 2)
	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	assert.True(t, l.Allow("b"))
}

func TestLimiter_Cleanup(t *testing.T) {
	t.Parallel()

	now := time.Now()
	l := New(1, 1)
	l.now = func() time.Time { return now }
	l.Allow("old")

	l.now = func() time.Time { return now.Add(time.Hour) }
	l.Allow("new")
	assert.Equal(t, 1, l.Cleanup())
}

func TestLimiter_Middleware(t *testing.T) {
	t.Parallel()

	e := echo.New()
	l := New(0.001, 1)
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, l.Middleware())

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}
