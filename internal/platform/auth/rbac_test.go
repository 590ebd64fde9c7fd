package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/careledger/careledger/internal/platform/rbac"
)

// grantStore allows everything for one user and nothing for anyone else.
type grantStore struct {
	rbac.Store
	user uuid.UUID
	role uuid.UUID
}

func (s *grantStore) RolesForUser(_ context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	if userID == s.user {
		return []uuid.UUID{s.role}, nil
	}
	return nil, nil
}

func (s *grantStore) HasAnyPermission(_ context.Context, roleIDs []uuid.UUID, _, _ string) (bool, error) {
	return len(roleIDs) > 0, nil
}

func doRequest(t *testing.T, mw echo.MiddlewareFunc, actor string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/patients", nil)
	if actor != "" {
		req = req.WithContext(context.WithValue(req.Context(), UserIDKey, actor))
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestRequirePermission_Allowed(t *testing.T) {
	user := uuid.New()
	ev := rbac.NewEvaluator(&grantStore{user: user, role: uuid.New()}, zerolog.Nop())
	mw := RequirePermission(ev, "patient", "view")

	rec := doRequest(t, mw, user.String())
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestRequirePermission_Denied(t *testing.T) {
	ev := rbac.NewEvaluator(&grantStore{user: uuid.New(), role: uuid.New()}, zerolog.Nop())
	mw := RequirePermission(ev, "patient", "view")

	rec := doRequest(t, mw, uuid.New().String())
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rec.Code)
	}
}

func TestRequirePermission_NoActor(t *testing.T) {
	ev := rbac.NewEvaluator(&grantStore{}, zerolog.Nop())
	mw := RequirePermission(ev, "patient", "view")

	rec := doRequest(t, mw, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestActorUUIDFromContext(t *testing.T) {
	id := uuid.New()
	ctx := context.WithValue(context.Background(), UserIDKey, id.String())
	got := ActorUUIDFromContext(ctx)
	if got == nil || *got != id {
		t.Errorf("expected %s, got %v", id, got)
	}

	if ActorUUIDFromContext(context.Background()) != nil {
		t.Error("expected nil actor for empty context")
	}

	ctx = context.WithValue(context.Background(), UserIDKey, "not-a-uuid")
	if ActorUUIDFromContext(ctx) != nil {
		t.Error("expected nil actor for unparseable id")
	}
}
