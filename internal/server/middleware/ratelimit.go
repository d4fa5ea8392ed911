package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type keyedLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimitByIP applies per-IP rate limiting for unauthenticated endpoints
// (e.g. auth routes). Uses chi's RealIP middleware value via r.RemoteAddr.
// Stale entries are cleaned up every 10 minutes.
func RateLimitByIP(ctx context.Context, requestsPerSecond float64, burst int) func(http.Handler) http.Handler {
	var (
		mu       sync.Mutex
		limiters = make(map[string]*keyedLimiter)
	)

	// Background cleanup of stale limiters.
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				mu.Lock()
				cutoff := time.Now().Add(-30 * time.Minute)
				for ip, il := range limiters {
					if il.lastAccess.Before(cutoff) {
						delete(limiters, ip)
					}
				}
				mu.Unlock()
			case <-ctx.Done():
				return
			}
		}
	}()

	limiterFor := func(ip string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()

		il, ok := limiters[ip]
		if !ok {
			il = &keyedLimiter{
				limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
				lastAccess: time.Now(),
			}
			limiters[ip] = il
		} else {
			il.lastAccess = time.Now()
		}
		return il.limiter
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := r.RemoteAddr
			lim := limiterFor(ip)
			if !lim.Allow() {
				http.Error(w, `{"title":"Too Many Requests","status":429,"detail":"rate limit exceeded"}`, http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimit applies per-administrator rate limiting to authenticated routes.
// It must run after RequireAdmin. Stale limiter entries are cleaned up every
// 10 minutes to prevent unbounded memory growth.
func RateLimit(ctx context.Context, requestsPerSecond float64, burst int) func(http.Handler) http.Handler {
	var (
		mu       sync.Mutex
		limiters = make(map[string]*keyedLimiter)
	)

	// Background cleanup of stale limiters.
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				mu.Lock()
				cutoff := time.Now().Add(-30 * time.Minute)
				for uid, al := range limiters {
					if al.lastAccess.Before(cutoff) {
						delete(limiters, uid)
					}
				}
				mu.Unlock()
			case <-ctx.Done():
				return
			}
		}
	}()

	limiterFor := func(uid string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()

		al, ok := limiters[uid]
		if !ok {
			al = &keyedLimiter{
				limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
				lastAccess: time.Now(),
			}
			limiters[uid] = al
		} else {
			al.lastAccess = time.Now()
		}
		return al.limiter
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				// No actor in context; skip rate limiting.
				next.ServeHTTP(w, r)
				return
			}

			lim := limiterFor(actor.UID)
			if !lim.Allow() {
				http.Error(w, `{"title":"Too Many Requests","status":429,"detail":"rate limit exceeded"}`, http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
