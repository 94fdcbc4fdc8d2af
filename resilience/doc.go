// Package resilience implements retry, circuit breaking, rate limiting, and
// bulkhead isolation for stages that call out to flaky dependencies.
//
// Each primitive stands alone: Retry reruns an operation with exponential
// backoff and jitter, CircuitBreaker fails fast after repeated errors,
// RateLimiter smooths call rate with a token bucket, and Bulkhead caps
// in-flight calls. They nest when a stage needs more than one:
//
//	cb := resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig("exec"))
//	bh := resilience.NewBulkhead(resilience.BulkheadConfig{MaxConcurrent: 10})
//
//	err := cb.Execute(func() error {
//	    return bh.Execute(ctx, func() error {
//	        return cmd.Run()
//	    })
//	})
//
// Pipeline stages normally do not call these directly; they declare a
// parts.ResilienceConfig and let the stage wrapper order the layers.
package resilience
