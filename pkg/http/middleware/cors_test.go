package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func newCORSEcho(origins ...string) *echo.Echo {
	e := echo.New()
	e.Use(CORS(CORSConfig{
		AllowOrigins: origins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{echo.HeaderContentType},
	}))
	e.GET("/api/compare", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	return e
}

func TestCORSAllowedOriginPreflight(t *testing.T) {
	e := newCORSEcho("https://app.example.com")

	req := httptest.NewRequest(http.MethodOptions, "/api/compare", nil)
	req.Header.Set(echo.HeaderOrigin, "https://app.example.com")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get(echo.HeaderAccessControlAllowOrigin); got != "https://app.example.com" {
		t.Fatalf("allow origin = %q", got)
	}
	if got := rec.Header().Get(echo.HeaderAccessControlAllowMethods); got != "GET, POST" {
		t.Fatalf("allow methods = %q", got)
	}
}

func TestCORSOtherOriginGetsNoHeaders(t *testing.T) {
	e := newCORSEcho("https://app.example.com")

	req := httptest.NewRequest(http.MethodGet, "/api/compare", nil)
	req.Header.Set(echo.HeaderOrigin, "https://evil.example.net")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get(echo.HeaderAccessControlAllowOrigin); got != "" {
		t.Fatalf("allow origin leaked: %q", got)
	}
}

func TestCORSWildcard(t *testing.T) {
	e := newCORSEcho("*")

	req := httptest.NewRequest(http.MethodGet, "/api/compare", nil)
	req.Header.Set(echo.HeaderOrigin, "https://anywhere.example.org")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if got := rec.Header().Get(echo.HeaderAccessControlAllowOrigin); got != "*" {
		t.Fatalf("allow origin = %q", got)
	}
}
