package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiter_Allow(t *testing.T) {
	l := NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !l.Allow("10.0.0.1") {
			t.Errorf("request %d should not be rate limited", i+1)
		}
	}
	if l.Allow("10.0.0.1") {
		t.Error("4th request should be rate limited")
	}
	if !l.Allow("10.0.0.2") {
		t.Error("other clients should have their own window")
	}
}

func TestRateLimiter_WindowExpiry(t *testing.T) {
	l := NewRateLimiter(1, time.Minute)
	now := time.Now()
	l.now = func() time.Time { return now }

	if !l.Allow("c") {
		t.Fatal("first request should pass")
	}
	if l.Allow("c") {
		t.Fatal("second request should be limited")
	}

	now = now.Add(61 * time.Second)
	if !l.Allow("c") {
		t.Error("request after window should pass")
	}
}

func TestRateLimiter_Reset(t *testing.T) {
	l := NewRateLimiter(1, time.Minute)
	l.Allow("c")
	l.Reset()
	if !l.Allow("c") {
		t.Error("expected reset to clear windows")
	}
}

func TestRateLimiter_Sweep(t *testing.T) {
	l := NewRateLimiter(1, time.Minute)
	now := time.Now()
	l.now = func() time.Time { return now }
	l.Allow("old")

	l.mu.Lock()
	l.sweep(now.Add(time.Second))
	_, ok := l.windows["old"]
	l.mu.Unlock()
	if ok {
		t.Error("expected stale window to be swept")
	}
}

func TestRateLimiter_Middleware(t *testing.T) {
	l := NewRateLimiter(1, time.Minute)
	h := l.Middleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest("POST", "/", nil)
	req.RemoteAddr = "192.0.2.1:1234"

	w := httptest.NewRecorder()
	h(w, req)
	if w.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", w.Code)
	}

	req.RemoteAddr = "192.0.2.1:5678"
	w = httptest.NewRecorder()
	h(w, req)
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429 for same host on a new port, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") != "60" {
		t.Errorf("expected Retry-After 60, got %q", w.Header().Get("Retry-After"))
	}
}

func TestRateLimiter_RetryAfterRoundsUp(t *testing.T) {
	tests := []struct {
		window time.Duration
		want   string
	}{
		{500 * time.Millisecond, "1"},
		{1500 * time.Millisecond, "2"},
		{time.Minute, "60"},
	}
	for _, tt := range tests {
		l := NewRateLimiter(1, tt.window)
		h := l.Middleware(func(w http.ResponseWriter, r *http.Request) {})

		req := httptest.NewRequest("POST", "/", nil)
		req.RemoteAddr = "192.0.2.9:1000"
		h(httptest.NewRecorder(), req)

		w := httptest.NewRecorder()
		h(w, req)
		if w.Code != http.StatusTooManyRequests {
			t.Fatalf("window %s: expected 429, got %d", tt.window, w.Code)
		}
		if got := w.Header().Get("Retry-After"); got != tt.want {
			t.Errorf("window %s: expected Retry-After %s, got %q", tt.window, tt.want, got)
		}
	}
}
