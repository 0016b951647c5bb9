package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking-api/internal/handler"
)

const routerTestSecret = "router-test-secret"

// shortCircuit stands in for the response cache: it answers immediately, so
// any route it is mounted on returns its marker body.  Routes that must not
// be cached never produce it.
func shortCircuit(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.String(http.StatusOK, "cached")
	}
}

func newWiredServer() *echo.Echo {
	e := echo.New()
	catalog := CatalogHandlers{
		Genres:   &handler.GenreHandler{},
		Actors:   &handler.ActorHandler{},
		Movies:   &handler.MovieHandler{},
		Halls:    &handler.HallHandler{},
		Sessions: &handler.SessionHandler{},
	}
	RegisterAuth(e, &handler.AuthHandler{}, routerTestSecret)
	RegisterCatalog(e, catalog, routerTestSecret, shortCircuit)
	RegisterOrders(e, &handler.OrderHandler{}, routerTestSecret)
	return e
}

func hit(e *echo.Echo, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestCacheAppliesToCatalogReads(t *testing.T) {
	e := newWiredServer()
	for _, target := range []string{"/v1/genres", "/v1/movies", "/v1/sessions"} {
		rec := hit(e, http.MethodGet, target)
		if rec.Code != http.StatusOK || rec.Body.String() != "cached" {
			t.Errorf("GET %s: got %d %q, want the cache layer to answer", target, rec.Code, rec.Body.String())
		}
	}
}

func TestCacheSitsBehindAccessPolicy(t *testing.T) {
	// Writes are denied before the cache layer ever runs.
	e := newWiredServer()
	rec := hit(e, http.MethodPost, "/v1/genres")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous POST /v1/genres: got %d, want 401", rec.Code)
	}
	if rec.Body.String() == "cached" {
		t.Error("cache layer answered a denied write")
	}
}

func TestCacheNeverAppliesToPerUserRoutes(t *testing.T) {
	e := newWiredServer()
	for _, tc := range []struct {
		method, target string
	}{
		{http.MethodGet, "/v1/orders"},
		{http.MethodGet, "/v1/orders/1"},
		{http.MethodGet, "/v1/me"},
	} {
		rec := hit(e, tc.method, tc.target)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("anonymous %s %s: got %d, want 401", tc.method, tc.target, rec.Code)
		}
		if rec.Body.String() == "cached" {
			t.Errorf("%s %s: cache layer answered a per-user route", tc.method, tc.target)
		}
	}
}

func TestLogoutAllRequiresAccessToken(t *testing.T) {
	e := newWiredServer()
	rec := hit(e, http.MethodPost, "/v1/auth/logout-all")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous logout-all: got %d, want 401", rec.Code)
	}
}
