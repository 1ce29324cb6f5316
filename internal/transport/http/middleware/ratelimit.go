package middleware

import (
	"net/http"
	"sync"
	"time"

	"hrpay/internal/transport/http/api"
	"hrpay/internal/transport/http/shared"
)

// RateLimitKeyFunc derives the bucket key for a request.
type RateLimitKeyFunc func(r *http.Request) string

type rateBucket struct {
	count   int
	resetAt time.Time
}

type rateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*rateBucket
	limit   int
	window  time.Duration
	keyFunc RateLimitKeyFunc
}

type RateLimitOption func(*rateLimiter)

func WithKeyFunc(fn RateLimitKeyFunc) RateLimitOption {
	return func(rl *rateLimiter) {
		rl.keyFunc = fn
	}
}

// RateLimit is a fixed-window limiter keyed by actor or client IP.
func RateLimit(limit int, window time.Duration, opts ...RateLimitOption) func(http.Handler) http.Handler {
	rl := &rateLimiter{
		buckets: make(map[string]*rateBucket),
		limit:   limit,
		window:  window,
		keyFunc: actorOrIPKey,
	}

	for _, opt := range opts {
		opt(rl)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.allow(rl.keyFunc(r)) {
				api.Fail(w, http.StatusTooManyRequests, "rate_limited", "too many requests", GetRequestID(r.Context()))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (rl *rateLimiter) allow(key string) bool {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[key]
	if !ok || now.After(b.resetAt) {
		rl.buckets[key] = &rateBucket{count: 1, resetAt: now.Add(rl.window)}
		rl.sweep(now)
		return true
	}

	if b.count >= rl.limit {
		return false
	}

	b.count++
	return true
}

// sweep drops expired buckets; called under the lock on bucket rollover.
func (rl *rateLimiter) sweep(now time.Time) {
	if len(rl.buckets) < 1024 {
		return
	}
	for key, b := range rl.buckets {
		if now.After(b.resetAt) {
			delete(rl.buckets, key)
		}
	}
}

func actorOrIPKey(r *http.Request) string {
	if user := Actor(r.Context()); user != nil {
		return "user:" + user.ID
	}
	return "ip:" + shared.ClientIP(r)
}

// ClientIPKey keys strictly by source IP; used on unauthenticated
// routes like login where the actor is not yet known.
func ClientIPKey(r *http.Request) string {
	return "ip:" + shared.ClientIP(r)
}
