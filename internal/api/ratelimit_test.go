package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestLimiterAllowsUpToLimit(t *testing.T) {
	l := NewLimiter(3, time.Minute)
	for i := 0; i < 3; i++ {
		if !l.Allow("10.0.0.1") {
			t.Fatalf("request %d denied under the limit", i+1)
		}
	}
	if l.Allow("10.0.0.1") {
		t.Fatal("request over the limit allowed")
	}
}

func TestLimiterIsolatesClients(t *testing.T) {
	l := NewLimiter(1, time.Minute)
	l.Allow("10.0.0.1")
	if !l.Allow("10.0.0.2") {
		t.Fatal("second client throttled by the first client's window")
	}
}

func TestThrottle(t *testing.T) {
	l := NewLimiter(1, time.Minute)
	calls := 0
	h := l.Throttle(func(w http.ResponseWriter, r *http.Request) {
		calls++
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/work", nil)
	req.RemoteAddr = "10.0.0.1:54321"

	w := httptest.NewRecorder()
	h(w, req)
	if w.Code != http.StatusOK || calls != 1 {
		t.Fatalf("first request: status %d calls %d", w.Code, calls)
	}

	w = httptest.NewRecorder()
	h(w, req)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: status %d, want 429", w.Code)
	}
	if calls != 1 {
		t.Fatal("throttled request reached the handler")
	}
	if w.Header().Get("Retry-After") == "" {
		t.Fatal("missing Retry-After header")
	}
}

func TestClientKeyHonorsForwardedFor(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/api/v1/work", nil)
	r.RemoteAddr = "127.0.0.1:1000"
	if got := clientKey(r); got != "127.0.0.1" {
		t.Fatalf("direct key %q, want the IP without its port", got)
	}

	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	if got := clientKey(r); got != "203.0.113.7" {
		t.Fatalf("forwarded key %q, want the first hop", got)
	}
}

func TestThrottleTracksForwardedClientAcrossPorts(t *testing.T) {
	l := NewLimiter(1, time.Minute)
	h := l.Throttle(func(w http.ResponseWriter, r *http.Request) {})

	first := httptest.NewRequest(http.MethodPost, "/api/v1/work", nil)
	first.RemoteAddr = "127.0.0.1:1000"
	first.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	h(httptest.NewRecorder(), first)

	second := httptest.NewRequest(http.MethodPost, "/api/v1/work", nil)
	second.RemoteAddr = "127.0.0.1:2000"
	second.Header.Set("X-Forwarded-For", "203.0.113.7")
	w := httptest.NewRecorder()
	h(w, second)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("forwarded client not tracked across ports: status %d", w.Code)
	}
}
