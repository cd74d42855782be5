package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimiterSeparatesAuthBucket(t *testing.T) {
	rl := NewRateLimiter(120, 1)
	handler := rl.Middleware(okHandler())

	// The auth bucket has burst 1 with authRPM=1: the second immediate login
	// attempt must be rejected.
	req1 := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	rec1 := httptest.NewRecorder()
	handler.ServeHTTP(rec1, req1)
	assert.Equal(t, http.StatusOK, rec1.Code)

	req2 := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	rec2 := httptest.NewRecorder()
	handler.ServeHTTP(rec2, req2)
	assert.Equal(t, http.StatusTooManyRequests, rec2.Code)
	assert.Equal(t, "60", rec2.Header().Get("Retry-After"))

	// The general bucket is untouched by the exhausted auth bucket.
	req3 := httptest.NewRequest(http.MethodGet, "/api/v1/media", nil)
	rec3 := httptest.NewRecorder()
	handler.ServeHTTP(rec3, req3)
	assert.Equal(t, http.StatusOK, rec3.Code)
}

func TestRateLimiterAllowsBurstOnGeneralRoutes(t *testing.T) {
	rl := NewRateLimiter(120, 10)
	handler := rl.Middleware(okHandler())

	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/content/blog", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("request %d failed with status %d", i, rec.Code)
		}
	}
}

func TestRateLimiterDefaults(t *testing.T) {
	rl := NewRateLimiter(0, -1)
	assert.Equal(t, 120, rl.generalRPM)
	assert.Equal(t, 10, rl.authRPM)
}

func TestExtractClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:5000"
	assert.Equal(t, "10.0.0.1", extractClientIP(req))

	req.Header.Set("X-Real-IP", "10.0.0.2")
	assert.Equal(t, "10.0.0.2", extractClientIP(req))

	req.Header.Set("X-Forwarded-For", "10.0.0.3, 10.0.0.4")
	assert.Equal(t, "10.0.0.3", extractClientIP(req))
}
