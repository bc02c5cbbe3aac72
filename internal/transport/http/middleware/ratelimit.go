package middleware

import (
	"encoding/json"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a per-IP token-bucket rate limiter with automatic stale-entry cleanup.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*ipLimiter
	r        rate.Limit
	burst    int

	done     chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter creates a per-IP limiter: r requests/second, burst up to burst requests.
// Call Stop to end the background cleanup.
func NewRateLimiter(r rate.Limit, burst int) *RateLimiter {
	rl := &RateLimiter{
		limiters: make(map[string]*ipLimiter),
		r:        r,
		burst:    burst,
		done:     make(chan struct{}),
	}
	go rl.cleanup(5*time.Minute, 10*time.Minute)
	return rl
}

// Stop ends the cleanup goroutine. Safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}

func (rl *RateLimiter) get(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if v, ok := rl.limiters[ip]; ok {
		v.lastSeen = time.Now()
		return v.limiter
	}
	l := rate.NewLimiter(rl.r, rl.burst)
	rl.limiters[ip] = &ipLimiter{limiter: l, lastSeen: time.Now()}
	return l
}

// cleanup drops entries idle for longer than ttl, checking every interval.
func (rl *RateLimiter) cleanup(interval, ttl time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.evict(ttl)
		}
	}
}

func (rl *RateLimiter) evict(ttl time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for ip, v := range rl.limiters {
		if time.Since(v.lastSeen) > ttl {
			delete(rl.limiters, ip)
		}
	}
}

// Limit is the middleware handler that enforces the rate limit per client IP.
// Rejected requests get 429 with a Retry-After hint in whole seconds.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.get(realIP(r)).Allow() {
			w.Header().Set("Retry-After", strconv.Itoa(rl.retryAfter()))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "too many requests"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// retryAfter is the time for one token to refill, rounded up to a second.
func (rl *RateLimiter) retryAfter() int {
	if rl.r <= 0 || rl.r == rate.Inf {
		return 1
	}
	secs := math.Ceil(1 / float64(rl.r))
	if secs > 3600 {
		return 3600
	}
	return int(secs)
}

// realIP prefers the first X-Forwarded-For hop, then X-Real-Ip, then RemoteAddr.
func realIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xr := r.Header.Get("X-Real-Ip"); xr != "" {
		return xr
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
