package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func paramsFor(t *testing.T, query string) Params {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?"+query, nil)
	return FromContext(e.NewContext(req, httptest.NewRecorder()))
}

func TestFromContext_Defaults(t *testing.T) {
	p := paramsFor(t, "")
	if p.Limit != DefaultLimit || p.Offset != 0 {
		t.Errorf("expected defaults, got %+v", p)
	}
}

func TestFromContext_Explicit(t *testing.T) {
	p := paramsFor(t, "limit=10&offset=30")
	if p.Limit != 10 || p.Offset != 30 {
		t.Errorf("expected 10/30, got %+v", p)
	}
}

func TestFromContext_ClampsLimit(t *testing.T) {
	p := paramsFor(t, "limit=5000")
	if p.Limit != MaxLimit {
		t.Errorf("expected clamp to %d, got %d", MaxLimit, p.Limit)
	}
}

func TestNewResponse_HasMore(t *testing.T) {
	r := NewResponse(nil, 25, 10, 10)
	if !r.HasMore {
		t.Error("expected has_more for offset 10 of 25")
	}
	r = NewResponse(nil, 25, 10, 20)
	if r.HasMore {
		t.Error("expected no more results past offset 20 of 25")
	}
}
