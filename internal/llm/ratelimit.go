package llm

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// rateLimiter is a token bucket refilled lazily from elapsed time.
type rateLimiter struct {
	lastRefill time.Time
	now        func() time.Time
	interval   time.Duration
	tokens     int
	capacity   int
	mu         sync.Mutex
}

// newRateLimiter allows requestsPerMinute requests per minute with a burst of
// the same size.
func newRateLimiter(requestsPerMinute int) *rateLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = DefaultRateLimit
	}

	return &rateLimiter{
		tokens:     requestsPerMinute,
		capacity:   requestsPerMinute,
		interval:   time.Minute / time.Duration(requestsPerMinute),
		now:        time.Now,
		lastRefill: time.Now(),
	}
}

// refillLocked credits whole intervals elapsed since the last refill.
func (rl *rateLimiter) refillLocked() {
	now := rl.now()
	if rl.tokens >= rl.capacity {
		rl.lastRefill = now
		return
	}

	earned := int(now.Sub(rl.lastRefill) / rl.interval)
	if earned <= 0 {
		return
	}
	rl.tokens = min(rl.capacity, rl.tokens+earned)
	rl.lastRefill = rl.lastRefill.Add(time.Duration(earned) * rl.interval)
}

// tryAcquire takes a token without blocking. When none is available it
// returns how long until the next one.
func (rl *rateLimiter) tryAcquire() (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refillLocked()
	if rl.tokens > 0 {
		rl.tokens--
		return true, 0
	}
	return false, rl.interval - rl.now().Sub(rl.lastRefill)
}

// wait blocks until a token is available or the context is done.
func (rl *rateLimiter) wait(ctx context.Context) error {
	for {
		ok, delay := rl.tryAcquire()
		if ok {
			return nil
		}

		timer := time.NewTimer(max(delay, time.Millisecond))
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("rate limiter canceled: %w", ctx.Err())
		case <-timer.C:
		}
	}
}
