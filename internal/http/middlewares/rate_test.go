package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dropDatabas3/learn2grow/internal/rate"
)

func TestWithRateLimit_DeniesOverLimit(t *testing.T) {
	limiter := rate.NewMemoryLimiter(2, time.Minute)
	h := Chain(okHandler(), WithRateLimit(RateLimitConfig{
		Limiter: limiter,
		KeyFunc: IPOnlyRateKey,
	}))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("POST", "/login", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/login", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("falta header Retry-After")
	}
}

func TestWithRateLimit_WhitelistedPathBypasses(t *testing.T) {
	limiter := rate.NewMemoryLimiter(1, time.Minute)
	h := Chain(okHandler(), WithRateLimit(RateLimitConfig{
		Limiter:   limiter,
		KeyFunc:   IPOnlyRateKey,
		Whitelist: []string{"/healthz"},
	}))

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, rec.Code)
		}
	}
}
