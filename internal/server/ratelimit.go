package server

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"

	"github.com/vector76/catchup/internal/metrics"
)

const (
	// maxTrackedClients bounds the per-IP limiter table.
	maxTrackedClients = 10000
	// limiterIdleTTL drops a client's limiter after this long without traffic.
	limiterIdleTTL = 5 * time.Minute
)

// rateLimiter enforces a token bucket per client IP.
type rateLimiter struct {
	limiters *expirable.LRU[string, *rate.Limiter]
	rate     rate.Limit
	burst    int
}

func newRateLimiter(r rate.Limit, burst int) *rateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &rateLimiter{
		limiters: expirable.NewLRU[string, *rate.Limiter](maxTrackedClients, nil, limiterIdleTTL),
		rate:     r,
		burst:    burst,
	}
}

// allow reports whether the client at ip may proceed now.
func (rl *rateLimiter) allow(ip string) bool {
	l, ok := rl.limiters.Get(ip)
	if !ok {
		l = rate.NewLimiter(rl.rate, rl.burst)
	}
	// Add refreshes the idle expiry.
	rl.limiters.Add(ip, l)
	return l.Allow()
}

// retryAfter is the Retry-After value in whole seconds.
func (rl *rateLimiter) retryAfter() string {
	return strconv.Itoa(max(int(1.0/float64(rl.rate)), 1))
}

// rateLimit returns middleware that calls deny instead of next when the
// client is over its limit. It is a no-op when limiting is disabled.
func (s *Server) rateLimit(deny http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if s.limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !s.limiter.allow(clientIP(r)) {
				metrics.RecordRequest(metrics.ResultLimited)
				w.Header().Set("Retry-After", s.limiter.retryAfter())
				deny(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func apiRateLimited(w http.ResponseWriter, r *http.Request) {
	jsonError(w, "Too many requests", "Please wait a moment before trying again.", http.StatusTooManyRequests)
}

// clientIP returns the host part of RemoteAddr, which middleware.RealIP has
// already replaced with the forwarded address when present.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
