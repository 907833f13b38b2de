package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func requestWithRoles(roles ...string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := context.WithValue(req.Context(), UserRolesKey, roles)
	req = req.WithContext(ctx)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestRequireRole_Allows(t *testing.T) {
	mw := RequireRole("nurse", "doctor")
	handler := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }

	if err := mw(handler)(requestWithRoles("nurse")); err != nil {
		t.Errorf("nurse should pass: %v", err)
	}
	if err := mw(handler)(requestWithRoles("doctor")); err != nil {
		t.Errorf("doctor should pass: %v", err)
	}
}

func TestRequireRole_AdminAlwaysPasses(t *testing.T) {
	mw := RequireRole("nurse")
	handler := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }
	if err := mw(handler)(requestWithRoles("admin")); err != nil {
		t.Errorf("admin should pass: %v", err)
	}
}

func TestRequireRole_Denies(t *testing.T) {
	mw := RequireRole("doctor")
	handler := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }

	err := mw(handler)(requestWithRoles("nurse"))
	if err == nil {
		t.Fatal("expected forbidden error")
	}
	if he, ok := err.(*echo.HTTPError); !ok || he.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %v", err)
	}
}

func TestRequireRole_NoRoles(t *testing.T) {
	mw := RequireRole("doctor")
	handler := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }
	if err := mw(handler)(requestWithRoles()); err == nil {
		t.Fatal("expected forbidden error for empty roles")
	}
}
