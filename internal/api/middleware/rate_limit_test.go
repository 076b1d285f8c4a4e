package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(nil)
	defer rl.Close()

	for i := 0; i < 3; i++ {
		if !rl.Allow("client:test", 3) {
			t.Fatalf("Request %d should be allowed", i+1)
		}
	}
	if rl.Allow("client:test", 3) {
		t.Error("Fourth request should be limited")
	}
	if !rl.Allow("other:test", 3) {
		t.Error("Buckets must be independent per key")
	}
}

func TestRateLimiter_Refill(t *testing.T) {
	rl := NewRateLimiter(nil)
	defer rl.Close()

	start := time.Now()
	for i := 0; i < 60; i++ {
		if ok, _ := rl.take("client", 60, start); !ok {
			t.Fatalf("Request %d should be allowed", i+1)
		}
	}

	ok, wait := rl.take("client", 60, start)
	if ok {
		t.Fatal("Bucket should be empty")
	}
	if wait <= 0 || wait > time.Second {
		t.Errorf("Expected a wait of at most one second, got %v", wait)
	}

	if ok, _ := rl.take("client", 60, start.Add(1500*time.Millisecond)); !ok {
		t.Error("Expected a token after one second of refill")
	}
}

func TestRateLimiter_Handle(t *testing.T) {
	rl := NewRateLimiter(map[string]int{LimitAPIWrite: 1})
	defer rl.Close()

	handler := rl.Handle(LimitAPIWrite)(okHandler)

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest("POST", "/api/v1/links", nil)
		req.RemoteAddr = "203.0.113.1:4000"
		rr := httptest.NewRecorder()
		handler(rr, req)
		codes = append(codes, rr.Code)

		if rr.Code == http.StatusTooManyRequests && rr.Header().Get("Retry-After") != "60" {
			t.Error("Expected Retry-After header")
		}
	}

	if codes[0] != http.StatusNoContent || codes[1] != http.StatusTooManyRequests {
		t.Errorf("Unexpected status codes %v", codes)
	}
}

func TestRateLimiter_Unlimited(t *testing.T) {
	rl := NewRateLimiter(map[string]int{})
	defer rl.Close()

	handler := rl.Handle(LimitRedirect)(okHandler)
	for i := 0; i < 100; i++ {
		rr := httptest.NewRecorder()
		handler(rr, httptest.NewRequest("GET", "/abc", nil))
		if rr.Code != http.StatusNoContent {
			t.Fatalf("Request %d limited without a configured limit", i+1)
		}
	}
}
