package api

import (
	"sync"
	"time"
)

// RateLimitConfig holds configuration for the rate limiter
type RateLimitConfig struct {
	Enabled bool
	// RequestsPerMin applies to the read routes
	RequestsPerMin int
	// WriteRequestsPerMin applies to the write routes
	WriteRequestsPerMin int
}

// DefaultRateLimitConfig returns the default limits
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Enabled:             true,
		RequestsPerMin:      120,
		WriteRequestsPerMin: 60,
	}
}

const (
	rateWindow = time.Minute
	sweepEvery = 5 * time.Minute
)

// bucket counts the requests of one key in the current window
type bucket struct {
	used    int
	resetAt time.Time
}

// RateLimiter counts requests per key in fixed one-minute windows
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	enabled bool
	now     func() time.Time

	done     chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter creates a limiter and starts sweeping expired windows
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	rl := &RateLimiter{
		buckets: make(map[string]*bucket),
		enabled: cfg.Enabled,
		now:     time.Now,
		done:    make(chan struct{}),
	}
	go rl.sweepLoop()
	return rl
}

// Allow records a request for key and reports whether it is within limit
func (rl *RateLimiter) Allow(key string, limit int) bool {
	ok, _ := rl.Reserve(key, limit)
	return ok
}

// Reserve records a request for key. When the limit is exhausted it returns
// false and the time left until the window resets. A limit of zero or less
// never rejects.
func (rl *RateLimiter) Reserve(key string, limit int) (bool, time.Duration) {
	if !rl.enabled || limit <= 0 {
		return true, 0
	}

	now := rl.now()
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b := rl.buckets[key]
	if b == nil || !now.Before(b.resetAt) {
		rl.buckets[key] = &bucket{used: 1, resetAt: now.Add(rateWindow)}
		return true, 0
	}
	if b.used >= limit {
		return false, b.resetAt.Sub(now)
	}
	b.used++
	return true, 0
}

// Len returns the number of tracked keys
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.buckets)
}

func (rl *RateLimiter) sweep() {
	now := rl.now()
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, b := range rl.buckets {
		if !now.Before(b.resetAt) {
			delete(rl.buckets, key)
		}
	}
}

func (rl *RateLimiter) sweepLoop() {
	ticker := time.NewTicker(sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.sweep()
		}
	}
}

// Stop ends the sweep goroutine. Later calls are no-ops.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}
