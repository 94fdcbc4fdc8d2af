package resilience

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrRateLimited is returned by Execute when no token is available.
var ErrRateLimited = errors.New("rate limit exceeded")

// RateLimiterConfig configures a rate limiter.
type RateLimiterConfig struct {
	// Name identifies this limiter in logs and callbacks.
	Name string
	// Rate is the sustained number of calls allowed per second.
	Rate float64
	// Burst is the bucket capacity: how many calls may go through at once
	// after an idle period.
	Burst int
	// OnLimit is invoked whenever a call is turned away.
	OnLimit func(name string)
}

// DefaultRateLimiterConfig allows ten calls per second with a burst of
// twenty.
func DefaultRateLimiterConfig(name string) RateLimiterConfig {
	return RateLimiterConfig{
		Name:  name,
		Rate:  10.0,
		Burst: 20,
	}
}

// RateLimiter is a token bucket: tokens accrue at Rate per second up to
// Burst, and each call spends one.
type RateLimiter struct {
	cfg RateLimiterConfig

	mu     sync.Mutex
	tokens float64
	last   time.Time
}

// NewRateLimiter creates a new rate limiter with a full bucket.
func NewRateLimiter(cfg RateLimiterConfig) *RateLimiter {
	if cfg.Rate <= 0 {
		cfg.Rate = 10.0
	}
	if cfg.Burst <= 0 {
		cfg.Burst = int(cfg.Rate)
	}
	return &RateLimiter{
		cfg:    cfg,
		tokens: float64(cfg.Burst),
		last:   time.Now(),
	}
}

// Allow reports whether one call may proceed now, without blocking.
func (rl *RateLimiter) Allow() bool {
	return rl.AllowN(1)
}

// AllowN reports whether n calls may proceed now, without blocking.
func (rl *RateLimiter) AllowN(n int) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.topUp(time.Now())
	if rl.tokens >= float64(n) {
		rl.tokens -= float64(n)
		return true
	}
	if rl.cfg.OnLimit != nil {
		rl.cfg.OnLimit(rl.cfg.Name)
	}
	return false
}

// Wait blocks until one call may proceed or the context ends.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	return rl.WaitN(ctx, 1)
}

// WaitN blocks until n calls may proceed or the context ends.
func (rl *RateLimiter) WaitN(ctx context.Context, n int) error {
	if rl.AllowN(n) {
		return nil
	}
	delay := rl.reserve(n)
	if delay <= 0 {
		return nil
	}
	return sleep(ctx, delay)
}

// Execute runs fn if a token is available, else returns ErrRateLimited.
func (rl *RateLimiter) Execute(fn func() error) error {
	if !rl.Allow() {
		return ErrRateLimited
	}
	return fn()
}

// ExecuteWait blocks for a token, then runs fn.
func (rl *RateLimiter) ExecuteWait(ctx context.Context, fn func() error) error {
	if err := rl.Wait(ctx); err != nil {
		return err
	}
	return fn()
}

// Tokens returns the number of tokens currently available.
func (rl *RateLimiter) Tokens() float64 {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.topUp(time.Now())
	return rl.tokens
}

// Rate returns the sustained calls-per-second rate.
func (rl *RateLimiter) Rate() float64 { return rl.cfg.Rate }

// Burst returns the bucket capacity.
func (rl *RateLimiter) Burst() int { return rl.cfg.Burst }

// topUp accrues tokens for the time elapsed since the last update. Callers
// must hold the lock.
func (rl *RateLimiter) topUp(now time.Time) {
	elapsed := now.Sub(rl.last).Seconds()
	rl.last = now

	rl.tokens += elapsed * rl.cfg.Rate
	if rl.tokens > float64(rl.cfg.Burst) {
		rl.tokens = float64(rl.cfg.Burst)
	}
}

// reserve debits n tokens immediately, letting the balance go negative, and
// returns how long the caller must wait for the debt to refill.
func (rl *RateLimiter) reserve(n int) time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.topUp(time.Now())
	if rl.tokens >= float64(n) {
		rl.tokens -= float64(n)
		return 0
	}

	short := float64(n) - rl.tokens
	rl.tokens -= float64(n)
	return time.Duration(short / rl.cfg.Rate * float64(time.Second))
}
