package oracle

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const maxBackoff = 300 * time.Second

// RateLimiter implements a token bucket with exponential backoff on
// consecutive API failures
type RateLimiter struct {
	requestsPerMinute int
	tokens            chan struct{}
	mu                sync.Mutex

	consecutiveErrors int
	lastErrorTime     time.Time
	backoffDuration   time.Duration
}

// NewRateLimiter creates a rate limiter allowing rpm requests per minute
func NewRateLimiter(rpm int) *RateLimiter {
	if rpm <= 0 {
		rpm = 60
	}

	rl := &RateLimiter{
		requestsPerMinute: rpm,
		tokens:            make(chan struct{}, rpm),
	}

	for i := 0; i < rpm; i++ {
		rl.tokens <- struct{}{}
	}

	go rl.refillLoop()

	return rl
}

// Wait blocks until a token is available or the context is cancelled.
// Returns an error while backoff is active.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if remaining := rl.backoffRemaining(); remaining > 0 {
		return fmt.Errorf("rate limited: backoff active for %s", remaining)
	}

	select {
	case <-rl.tokens:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RecordSuccess resets the exponential backoff
func (rl *RateLimiter) RecordSuccess() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.consecutiveErrors = 0
	rl.backoffDuration = 0
}

// RecordError triggers exponential backoff: 2^n seconds, capped at 5 minutes
func (rl *RateLimiter) RecordError() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.consecutiveErrors++
	rl.lastErrorTime = time.Now()

	backoff := time.Duration(1<<uint(rl.consecutiveErrors)) * time.Second
	if backoff > maxBackoff {
		backoff = maxBackoff
	}
	rl.backoffDuration = backoff
}

func (rl *RateLimiter) backoffRemaining() time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if rl.backoffDuration == 0 {
		return 0
	}
	remaining := rl.backoffDuration - time.Since(rl.lastErrorTime)
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (rl *RateLimiter) refillLoop() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rl.refill()
	}
}

func (rl *RateLimiter) refill() {
	for {
		select {
		case rl.tokens <- struct{}{}:
		default:
			return
		}
	}
}
