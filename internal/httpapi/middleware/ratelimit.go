package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ipLimiters keeps one token bucket per client IP, dropping buckets that
// have been idle past ttl so the map cannot grow forever.
type ipLimiters struct {
	limit rate.Limit
	burst int
	ttl   time.Duration

	mu      sync.Mutex
	clients map[string]*client
}

type client struct {
	lim  *rate.Limiter
	seen time.Time
}

func newIPLimiters(rpm, burst int) *ipLimiters {
	return &ipLimiters{
		limit:   rate.Limit(float64(rpm) / 60.0),
		burst:   burst,
		ttl:     10 * time.Minute,
		clients: make(map[string]*client),
	}
}

func (l *ipLimiters) allow(ip string) bool {
	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	c := l.clients[ip]
	if c == nil {
		c = &client{lim: rate.NewLimiter(l.limit, l.burst)}
		l.clients[ip] = c
	}
	c.seen = now

	if len(l.clients) > 1024 {
		for k, v := range l.clients {
			if now.Sub(v.seen) > l.ttl {
				delete(l.clients, k)
			}
		}
	}
	return c.lim.Allow()
}

// RateLimit limits requests per client IP. RateLimit(120, 60) means 120
// requests per minute with a burst of 60. rpm <= 0 disables the limiter.
func RateLimit(rpm, burst int) func(http.Handler) http.Handler {
	if rpm <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if burst < 1 {
		burst = 1
	}
	l := newIPLimiters(rpm, burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.allow(clientIP(r)) {
				deny(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
