package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/careledger/careledger/internal/platform/audit"
	"github.com/careledger/careledger/internal/platform/auth"
)

func TestAuditContext_CapturesActorAndOrigin(t *testing.T) {
	e := echo.New()
	actor := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/patients", nil)
	req.Header.Set("User-Agent", "careledger-web/1.0")
	req.Header.Set("X-Real-IP", "192.0.2.10")
	req = req.WithContext(context.WithValue(req.Context(), auth.UserIDKey, actor.String()))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var meta audit.RequestMeta
	handler := AuditContext()(func(c echo.Context) error {
		meta = audit.MetaFromContext(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if meta.ActorID == nil || *meta.ActorID != actor {
		t.Error("expected actor id in request metadata")
	}
	if meta.UserAgent != "careledger-web/1.0" {
		t.Errorf("unexpected user agent: %q", meta.UserAgent)
	}
	if meta.IPAddress == "" || meta.IPAddress == audit.UnknownOrigin {
		t.Errorf("expected real ip, got %q", meta.IPAddress)
	}
}

func TestAuditContext_NoActor(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/patients", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var meta audit.RequestMeta
	handler := AuditContext()(func(c echo.Context) error {
		meta = audit.MetaFromContext(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if meta.ActorID != nil {
		t.Error("expected nil actor for unauthenticated request")
	}
}

func TestResourceTypeFromPath(t *testing.T) {
	cases := map[string]string{
		"/api/v1/patients":         "patient",
		"/api/v1/patients/123":     "patient",
		"/api/v1/clinics/9/extras": "clinic",
		"/api/v1/roles":            "role",
		"/api/v1/":                 "unknown",
	}
	for path, want := range cases {
		if got := resourceTypeFromPath(path); got != want {
			t.Errorf("resourceTypeFromPath(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestMethodToAction(t *testing.T) {
	cases := map[string]string{
		http.MethodGet:    audit.ActionView,
		http.MethodPost:   audit.ActionCreate,
		http.MethodPut:    audit.ActionUpdate,
		http.MethodPatch:  audit.ActionUpdate,
		http.MethodDelete: audit.ActionDelete,
	}
	for method, want := range cases {
		if got := methodToAction(method); got != want {
			t.Errorf("methodToAction(%q) = %q, want %q", method, got, want)
		}
	}
}
