package server

import (
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// sweepThreshold is the number of tracked clients above which stale
// windows are pruned.
const sweepThreshold = 10000

// slidingWindow tracks request timestamps for rate limiting.
type slidingWindow struct {
	mu         sync.Mutex
	timestamps []time.Time
}

// RateLimiter enforces a per-client limit using a sliding window.
type RateLimiter struct {
	max    int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	windows map[string]*slidingWindow // key: client address
}

// NewRateLimiter creates a limiter allowing max requests per window per client.
func NewRateLimiter(max int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		max:     max,
		window:  window,
		now:     time.Now,
		windows: make(map[string]*slidingWindow),
	}
}

// Allow checks if a request from key is allowed and records it if so.
func (l *RateLimiter) Allow(key string) bool {
	now := l.now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	if len(l.windows) > sweepThreshold {
		l.sweep(cutoff)
	}
	w, ok := l.windows[key]
	if !ok {
		w = &slidingWindow{}
		l.windows[key] = w
	}
	l.mu.Unlock()

	w.mu.Lock()
	defer w.mu.Unlock()

	valid := 0
	for _, ts := range w.timestamps {
		if ts.After(cutoff) {
			w.timestamps[valid] = ts
			valid++
		}
	}
	w.timestamps = w.timestamps[:valid]

	if len(w.timestamps) >= l.max {
		return false
	}
	w.timestamps = append(w.timestamps, now)
	return true
}

// sweep drops windows with no request newer than cutoff. l.mu must be held.
func (l *RateLimiter) sweep(cutoff time.Time) {
	for key, w := range l.windows {
		w.mu.Lock()
		stale := len(w.timestamps) == 0 || !w.timestamps[len(w.timestamps)-1].After(cutoff)
		w.mu.Unlock()
		if stale {
			delete(l.windows, key)
		}
	}
}

// Reset clears all rate limit windows.
func (l *RateLimiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.windows = make(map[string]*slidingWindow)
}

// Middleware rejects requests over the limit with 429.
func (l *RateLimiter) Middleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(clientKey(r)) {
			w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(l.window)))
			http.Error(w, fmt.Sprintf("rate limit exceeded: max %d per %s", l.max, l.window), http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}

// retryAfterSeconds rounds the window up to whole seconds, never below 1.
func retryAfterSeconds(window time.Duration) int {
	return max(1, int(math.Ceil(window.Seconds())))
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
