package parts

import (
	"context"
	"time"

	"github.com/streamkit/streamkit/logger"
	"github.com/streamkit/streamkit/resilience"
)

// ResilienceConfig bundles optional per-value resilience policies for parts
// that call out to unreliable code. Nil fields are skipped; the zero config
// is pure passthrough with no overhead.
type ResilienceConfig struct {
	// CircuitBreaker stops calling after repeated failures.
	CircuitBreaker *resilience.CircuitBreakerConfig
	// Retry retries failed calls with exponential backoff.
	Retry *resilience.RetryConfig
	// RateLimiter throttles calls using a token bucket.
	RateLimiter *resilience.RateLimiterConfig
	// Bulkhead caps concurrent calls across all runs of the part.
	Bulkhead *resilience.BulkheadConfig
}

// IsEmpty reports whether no policy is configured.
func (c ResilienceConfig) IsEmpty() bool {
	return c.CircuitBreaker == nil && c.Retry == nil && c.RateLimiter == nil && c.Bulkhead == nil
}

// resilienceState holds initialized primitives. It lives in the part
// definition, not the run env: breaker, limiter, and bulkhead state is
// deliberately shared across runs, so repeated failures in one run trip the
// breaker for the next. All primitives are safe for concurrent use.
type resilienceState struct {
	cb       *resilience.CircuitBreaker
	rl       *resilience.RateLimiter
	bh       *resilience.Bulkhead
	retryCfg *resilience.RetryConfig
}

// buildResilience initializes the configured primitives. Callbacks left nil
// get logging defaults so trips and rejections are visible without wiring.
func buildResilience(cfg ResilienceConfig) *resilienceState {
	if cfg.IsEmpty() {
		return nil
	}
	log := logger.Get("parts")
	s := &resilienceState{}
	if cfg.Retry != nil {
		retryCfg := *cfg.Retry
		if retryCfg.OnRetry == nil {
			retryCfg.OnRetry = func(attempt int, err error, backoff time.Duration) {
				log.Debug("retrying after failure", logger.Fields(
					"attempt", attempt,
					"backoff_ms", backoff.Milliseconds(),
					logger.FieldError, err.Error(),
				))
			}
		}
		s.retryCfg = &retryCfg
	}
	if cfg.CircuitBreaker != nil {
		cbCfg := *cfg.CircuitBreaker
		if cbCfg.OnStateChange == nil {
			cbCfg.OnStateChange = func(name string, from, to resilience.State) {
				log.Warn("circuit breaker state changed", logger.Fields(
					"breaker", name,
					"from", from.String(),
					"to", to.String(),
				))
			}
		}
		s.cb = resilience.NewCircuitBreaker(cbCfg)
	}
	if cfg.RateLimiter != nil {
		rlCfg := *cfg.RateLimiter
		if rlCfg.OnLimit == nil {
			rlCfg.OnLimit = func(name string) {
				log.Debug("rate limit reached", logger.Fields("limiter", name))
			}
		}
		s.rl = resilience.NewRateLimiter(rlCfg)
	}
	if cfg.Bulkhead != nil {
		bhCfg := *cfg.Bulkhead
		if bhCfg.OnReject == nil {
			bhCfg.OnReject = func(name string) {
				log.Debug("bulkhead rejected call", logger.Fields("bulkhead", name))
			}
		}
		s.bh = resilience.NewBulkhead(bhCfg)
	}
	return s
}

// applyResilience runs fn through the chain:
// RateLimiter.Wait → Bulkhead → CircuitBreaker → Retry → fn.
// Resilience sentinel errors (resilience.ErrCircuitOpen and friends)
// propagate unchanged so callers can match them with errors.Is.
func applyResilience[T any](ctx context.Context, s *resilienceState, fn func() (T, error)) (T, error) {
	if s == nil {
		return fn()
	}

	if s.rl != nil {
		if err := s.rl.Wait(ctx); err != nil {
			var zero T
			return zero, err
		}
	}

	call := fn
	if s.retryCfg != nil {
		retryCfg := *s.retryCfg
		call = func() (T, error) {
			return resilience.Retry(ctx, retryCfg, fn)
		}
	}

	if s.cb != nil {
		cbCall := call
		call = func() (T, error) {
			var result T
			var resultErr error
			cbErr := s.cb.Execute(func() error {
				result, resultErr = cbCall()
				return resultErr
			})
			if cbErr != nil && resultErr == nil {
				return result, cbErr
			}
			return result, resultErr
		}
	}

	if s.bh != nil {
		return resilience.ExecuteWithResult(s.bh, ctx, call)
	}
	return call()
}
