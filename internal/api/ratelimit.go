// Throttling for the command endpoints that mutate the simulation.
// Fixed-window request counters per client key.
package api

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Limiter caps requests per client per window.
type Limiter struct {
	mu     sync.Mutex
	seen   map[string]*window
	limit  int
	period time.Duration
}

type window struct {
	count int
	start time.Time
}

// NewLimiter allows limit requests per period for each client key.
func NewLimiter(limit int, period time.Duration) *Limiter {
	return &Limiter{
		seen:   make(map[string]*window),
		limit:  limit,
		period: period,
	}
}

// Allow records a request for the client and reports whether it stays
// within the limit. Stale windows are pruned as a side effect, so the map
// cannot grow without bound.
func (l *Limiter) Allow(client string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	w := l.seen[client]
	if w == nil || now.Sub(w.start) >= l.period {
		l.prune(now)
		l.seen[client] = &window{count: 1, start: now}
		return true
	}
	w.count++
	return w.count <= l.limit
}

// retryAfter returns whole seconds until the client's window resets.
func (l *Limiter) retryAfter(client string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	w := l.seen[client]
	if w == nil {
		return 0
	}
	left := l.period - time.Since(w.start)
	if left <= 0 {
		return 0
	}
	return int(left.Seconds()) + 1
}

func (l *Limiter) prune(now time.Time) {
	for k, w := range l.seen {
		if now.Sub(w.start) >= 2*l.period {
			delete(l.seen, k)
		}
	}
}

// Throttle wraps a handler, answering 429 with Retry-After once a client
// exceeds the limit.
func (l *Limiter) Throttle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client := clientKey(r)
		if !l.Allow(client) {
			w.Header().Set("Retry-After", strconv.Itoa(l.retryAfter(client)))
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}

// clientKey identifies the requester: the first X-Forwarded-For hop when
// present, otherwise the remote IP without its port.
func clientKey(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
