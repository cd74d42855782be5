package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"go-git-cms/internal/model"
)

const (
	maxTrackedClients = 1000
	clientTTL         = 10 * time.Minute
)

type clientLimiter struct {
	general  *rate.Limiter
	auth     *rate.Limiter
	lastSeen time.Time
}

// RateLimiter applies per-client token buckets. Login attempts get a
// separate, tighter bucket than the rest of the API.
type RateLimiter struct {
	mu          sync.Mutex
	clients     map[string]*clientLimiter
	generalRPM  int
	authRPM     int
	lastCleanup time.Time
}

func NewRateLimiter(generalRPM, authRPM int) *RateLimiter {
	if generalRPM <= 0 {
		generalRPM = 120
	}
	if authRPM <= 0 {
		authRPM = 10
	}
	return &RateLimiter{
		clients:     make(map[string]*clientLimiter),
		generalRPM:  generalRPM,
		authRPM:     authRPM,
		lastCleanup: time.Now(),
	}
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP := extractClientIP(r)
		limiter := rl.getLimiter(clientIP)

		bucket := limiter.general
		if isAuthPath(r.URL.Path) {
			bucket = limiter.auth
		}

		if !bucket.Allow() {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "60")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = jsonEncode(w, model.APIResponse{
				Success: false,
				Error: &model.APIError{
					Code:    "RATE_LIMITED",
					Message: "Too many requests, slow down",
				},
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) getLimiter(clientIP string) *clientLimiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if time.Since(rl.lastCleanup) > clientTTL || len(rl.clients) > maxTrackedClients {
		rl.gcLocked()
	}

	limiter, ok := rl.clients[clientIP]
	if !ok {
		limiter = &clientLimiter{
			general: rate.NewLimiter(rate.Limit(float64(rl.generalRPM)/60), rl.generalRPM/4+1),
			auth:    rate.NewLimiter(rate.Limit(float64(rl.authRPM)/60), rl.authRPM/2+1),
		}
		rl.clients[clientIP] = limiter
	}
	limiter.lastSeen = time.Now()
	return limiter
}

// gcLocked removes stale clients. Caller holds rl.mu.
func (rl *RateLimiter) gcLocked() {
	cutoff := time.Now().Add(-clientTTL)
	for ip, limiter := range rl.clients {
		if limiter.lastSeen.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
	rl.lastCleanup = time.Now()
}

func isAuthPath(path string) bool {
	return strings.HasPrefix(path, "/api/v1/auth/login")
}

func extractClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
