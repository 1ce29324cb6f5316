package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"hrpay/internal/domain/auth"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func withActor(r *http.Request, user *auth.User) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), ctxKeyActor, user))
}

func TestRequestIDGenerated(t *testing.T) {
	var captured string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	if captured == "" {
		t.Fatal("request id missing from context")
	}
	if rec.Header().Get("X-Request-ID") != captured {
		t.Fatalf("header = %q, context = %q; want matching", rec.Header().Get("X-Request-ID"), captured)
	}
}

func TestRequestIDPropagated(t *testing.T) {
	var captured string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Request-ID", "client-supplied")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if captured != "client-supplied" {
		t.Fatalf("request id = %q, want client-supplied", captured)
	}
}

func TestRequireAuth(t *testing.T) {
	handler := RequireAuth(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 without actor", rec.Code)
	}

	rec = httptest.NewRecorder()
	user := &auth.User{ID: "u-1", Role: auth.RoleEmployee, IsActive: true}
	handler.ServeHTTP(rec, withActor(httptest.NewRequest("GET", "/", nil), user))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 with actor", rec.Code)
	}
}

func TestRequirePermission(t *testing.T) {
	handler := RequirePermission(auth.PermCreatePayroll)(okHandler())

	finance := &auth.User{
		ID:          "u-1",
		Role:        auth.RoleFinance,
		Permissions: auth.PermissionsForRole(auth.RoleFinance),
		IsActive:    true,
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, withActor(httptest.NewRequest("POST", "/", nil), finance))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 for finance", rec.Code)
	}

	employee := &auth.User{
		ID:          "u-2",
		Role:        auth.RoleEmployee,
		Permissions: auth.PermissionsForRole(auth.RoleEmployee),
		IsActive:    true,
	}
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, withActor(httptest.NewRequest("POST", "/", nil), employee))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403 for employee", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("POST", "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 unauthenticated", rec.Code)
	}
}

func TestRequireSuperAdminExactRole(t *testing.T) {
	handler := RequireSuperAdmin(okHandler())

	// Full permissions without the role is not enough.
	admin := &auth.User{
		ID:          "u-1",
		Role:        auth.RoleAdmin,
		Permissions: auth.PermissionsForRole(auth.RoleSuperAdmin),
		IsActive:    true,
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, withActor(httptest.NewRequest("POST", "/", nil), admin))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403 for non-superadmin role", rec.Code)
	}

	sa := &auth.User{ID: "u-2", Role: auth.RoleSuperAdmin, IsActive: true}
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, withActor(httptest.NewRequest("POST", "/", nil), sa))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 for superadmin", rec.Code)
	}
}

func TestRateLimit(t *testing.T) {
	handler := RateLimit(2, time.Minute)(okHandler())

	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "192.0.2.1:1234"

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i+1, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429 over limit", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "rate_limited") {
		t.Fatalf("body = %s, want rate_limited error code", rec.Body.String())
	}

	// A different client keeps its own bucket.
	other := httptest.NewRequest("GET", "/", nil)
	other.RemoteAddr = "192.0.2.2:1234"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, other)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 for separate client", rec.Code)
	}
}

func TestRateLimitKeysByActor(t *testing.T) {
	handler := RateLimit(1, time.Minute)(okHandler())

	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "192.0.2.3:1234"

	userA := &auth.User{ID: "u-a", IsActive: true}
	userB := &auth.User{ID: "u-b", IsActive: true}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, withActor(req, userA))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 for first actor", rec.Code)
	}

	// Same IP, different authenticated user: separate bucket.
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, withActor(req, userB))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 for second actor", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, withActor(req, userA))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429 for repeated actor", rec.Code)
	}
}

func TestBodyLimit(t *testing.T) {
	handler := BodyLimit(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, 64)
		if _, err := r.Body.Read(buf); err != nil {
			http.Error(w, "too large", http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("POST", "/", strings.NewReader("this body is longer than eight bytes"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413 for oversized body", rec.Code)
	}

	// GET bodies are not wrapped.
	req = httptest.NewRequest("GET", "/", strings.NewReader("this body is longer than eight bytes"))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 for GET", rec.Code)
	}
}

func TestSecureHeaders(t *testing.T) {
	handler := SecureHeaders(false)(okHandler())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatal("missing nosniff header")
	}
	if rec.Header().Get("Strict-Transport-Security") != "" {
		t.Fatal("HSTS must be off outside production")
	}

	handler = SecureHeaders(true)(okHandler())
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Header().Get("Strict-Transport-Security") == "" {
		t.Fatal("HSTS missing in production")
	}
}
