package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/villadaniela/fincaweb/internal/api/authz"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRouteGuardAllowsPublicPaths(t *testing.T) {
	guarded := WithRouteGuard(okHandler())

	paths := []string{"/", "/login", "/api/availability", "/api/gallery", "/api/reviews", "/health"}
	for _, path := range paths {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		guarded.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("path %s: expected status 200, got %d", path, rec.Code)
		}
	}
}

func TestRouteGuardRedirectsAnonymousPageRequest(t *testing.T) {
	guarded := WithRouteGuard(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/dashboard/calendario?mes=junio", nil)
	rec := httptest.NewRecorder()
	guarded.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status 303, got %d", rec.Code)
	}

	loc, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatalf("parse redirect location: %v", err)
	}
	if loc.Path != "/login" {
		t.Errorf("expected redirect to /login, got %q", loc.Path)
	}
	// Original path and query must survive the round trip.
	if callback := loc.Query().Get("callbackUrl"); callback != "/dashboard/calendario?mes=junio" {
		t.Errorf("expected callbackUrl to preserve path and query, got %q", callback)
	}
}

func TestRouteGuardRejectsAnonymousAPIRequest(t *testing.T) {
	guarded := WithRouteGuard(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/admin/fechas-ocupadas", nil)
	rec := httptest.NewRecorder()
	guarded.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("expected JSON body, got %q: %v", rec.Body.String(), err)
	}
	if body["message"] == "" {
		t.Error("expected a message field in the error body")
	}
}

func TestRouteGuardPassesAuthenticatedRequest(t *testing.T) {
	guarded := WithRouteGuard(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	ctx := authz.ContextWithUser(req.Context(), &authz.AuthUser{ID: 1, Email: "admin@test.com"})
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()
	guarded.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}

func TestIsProtectedPath(t *testing.T) {
	tests := []struct {
		path      string
		protected bool
	}{
		{"/dashboard", true},
		{"/dashboard/galeria", true},
		{"/api/admin/imagenes", true},
		{"/api/admin", true},
		{"/dashboardeo", false},
		{"/api/adminx", false},
		{"/api/availability", false},
		{"/", false},
	}

	for _, tt := range tests {
		if got := isProtectedPath(tt.path); got != tt.protected {
			t.Errorf("isProtectedPath(%q) = %v, want %v", tt.path, got, tt.protected)
		}
	}
}
