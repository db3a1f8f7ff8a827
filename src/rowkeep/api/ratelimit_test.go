package api

import (
	"testing"
	"time"
)

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{Enabled: true, RequestsPerMin: 3})
	defer rl.Stop()

	key := "ip:127.0.0.1"

	for i := 0; i < 3; i++ {
		if !rl.Allow(key, 3) {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	if rl.Allow(key, 3) {
		t.Fatal("4th request should be denied")
	}

	// Different key should still have quota
	if !rl.Allow("ip:2.2.2.2", 3) {
		t.Fatal("first request for another key should be allowed")
	}
}

func TestRateLimiter_WindowExpiry(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{Enabled: true})
	defer rl.Stop()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	key := "ip:10.0.0.1"
	if !rl.Allow(key, 1) {
		t.Fatal("first request should be allowed")
	}
	if rl.Allow(key, 1) {
		t.Fatal("second request should be denied within same window")
	}

	now = now.Add(61 * time.Second)
	if !rl.Allow(key, 1) {
		t.Fatal("request after window expiry should be allowed")
	}
}

func TestRateLimiter_DisabledOrZeroLimit(t *testing.T) {
	disabled := NewRateLimiter(RateLimitConfig{Enabled: false})
	defer disabled.Stop()

	for i := 0; i < 100; i++ {
		if !disabled.Allow("ip:1.1.1.1", 1) {
			t.Fatalf("request %d should be allowed when rate limiting is disabled", i+1)
		}
	}

	enabled := NewRateLimiter(RateLimitConfig{Enabled: true})
	defer enabled.Stop()
	if !enabled.Allow("ip:1.1.1.1", 0) {
		t.Fatal("request should be allowed with zero limit")
	}
}

func TestRateLimiter_Sweep(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{Enabled: true})
	defer rl.Stop()

	now := time.Now()
	rl.now = func() time.Time { return now }

	rl.Allow("ip:1.1.1.1", 5)
	rl.Allow("ip:2.2.2.2", 5)
	if rl.Len() != 2 {
		t.Fatalf("expected 2 windows, got %d", rl.Len())
	}

	now = now.Add(2 * time.Minute)
	rl.sweep()

	if rl.Len() != 0 {
		t.Fatalf("expected 0 windows after cleanup, got %d", rl.Len())
	}

	rl.Stop()
}

func TestRateLimiter_ReserveRetryAfter(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{Enabled: true})
	defer rl.Stop()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	if ok, _ := rl.Reserve("write:ip:10.0.0.1", 1); !ok {
		t.Fatal("first request should be allowed")
	}

	now = now.Add(20 * time.Second)
	ok, wait := rl.Reserve("write:ip:10.0.0.1", 1)
	if ok {
		t.Fatal("second request should be denied")
	}
	if wait != 40*time.Second {
		t.Fatalf("expected 40s until reset, got %v", wait)
	}
}
