// Package ratelimit provides a per-client-IP request limiter middleware.
package ratelimit

import (
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// bucketTTL is how long an idle client's limiter is kept before eviction.
const bucketTTL = time.Hour

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter throttles requests per client IP using a token bucket.
type Limiter struct {
	mu      sync.Mutex
	clients map[string]*client
	rate    rate.Limit
	burst   int
}

// New creates a limiter allowing perSecond sustained requests with the given
// burst per client IP.
func New(perSecond float64, burst int) *Limiter {
	return &Limiter{
		clients: make(map[string]*client),
		rate:    rate.Limit(perSecond),
		burst:   burst,
	}
}

// Allow reports whether a request from the given IP may proceed.
func (l *Limiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.clients[ip]
	if !ok {
		c = &client{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.clients[ip] = c
	}
	c.lastSeen = time.Now()

	l.evictStale()
	return c.limiter.Allow()
}

// evictStale drops limiters idle past the TTL. Caller must hold mu.
func (l *Limiter) evictStale() {
	cutoff := time.Now().Add(-bucketTTL)
	for ip, c := range l.clients {
		if c.lastSeen.Before(cutoff) {
			delete(l.clients, ip)
		}
	}
}

// Middleware rejects over-limit requests with 429.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}
		if !l.Allow(ip) {
			slog.Warn("Rate limit exceeded", "ip", ip, "path", r.URL.Path)
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
