package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dropDatabas3/learn2grow/internal/security/token"
)

func newIssuer(t *testing.T) *token.Issuer {
	t.Helper()
	iss, err := token.NewIssuer("secret-para-tests-123", "learn2grow-test", time.Hour)
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	return iss
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestWithAuth_MissingToken(t *testing.T) {
	h := Chain(okHandler(), WithAuth(newIssuer(t)))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestWithAuth_BadToken(t *testing.T) {
	h := Chain(okHandler(), WithAuth(newIssuer(t)))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer no-es-un-jwt")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestWithAuth_ValidTokenInjectsClaims(t *testing.T) {
	iss := newIssuer(t)
	raw, _, err := iss.Issue("user-1", "ana@example.org", token.RoleRecipient)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	var got *token.Claims
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetClaims(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	h := Chain(inner, WithAuth(iss))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got == nil || got.Subject != "user-1" || got.Role != token.RoleRecipient {
		t.Fatalf("claims = %+v", got)
	}
}

func TestRequireRole(t *testing.T) {
	iss := newIssuer(t)

	cases := []struct {
		role token.Role
		want int
	}{
		{token.RoleAdmin, http.StatusOK},
		{token.RoleSponsor, http.StatusForbidden},
		{token.RoleRecipient, http.StatusForbidden},
	}
	for _, tc := range cases {
		raw, _, err := iss.Issue("u", "u@example.org", tc.role)
		if err != nil {
			t.Fatalf("Issue: %v", err)
		}
		h := Chain(okHandler(), WithAuth(iss), RequireRole(token.RoleAdmin))

		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Bearer "+raw)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != tc.want {
			t.Fatalf("role %s: status = %d, want %d", tc.role, rec.Code, tc.want)
		}
	}
}

func TestRequireRole_WithoutAuthIs401(t *testing.T) {
	h := Chain(okHandler(), RequireRole(token.RoleAdmin))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}
