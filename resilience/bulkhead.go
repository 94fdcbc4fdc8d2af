package resilience

import (
	"context"
	"errors"
	"time"
)

// Bulkhead errors.
var (
	ErrBulkheadFull    = errors.New("bulkhead is full")
	ErrBulkheadTimeout = errors.New("bulkhead wait timeout")
)

// BulkheadConfig sizes a bulkhead and its wait policy.
type BulkheadConfig struct {
	// Name identifies this bulkhead in logs and callbacks.
	Name string
	// MaxConcurrent is the number of calls allowed in flight at once.
	MaxConcurrent int
	// MaxWait is how long to wait for a free slot. Zero fails immediately.
	MaxWait time.Duration
	// OnReject is invoked when a call is turned away.
	OnReject func(name string)
}

// DefaultBulkheadConfig allows ten concurrent calls with no waiting.
func DefaultBulkheadConfig(name string) BulkheadConfig {
	return BulkheadConfig{
		Name:          name,
		MaxConcurrent: 10,
	}
}

// Bulkhead caps how many calls run concurrently, isolating a slow
// dependency so it cannot absorb every worker in the process.
type Bulkhead struct {
	cfg   BulkheadConfig
	slots chan struct{}
}

// NewBulkhead builds a bulkhead with MaxConcurrent slots.
func NewBulkhead(cfg BulkheadConfig) *Bulkhead {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 10
	}
	return &Bulkhead{
		cfg:   cfg,
		slots: make(chan struct{}, cfg.MaxConcurrent),
	}
}

// Execute runs fn in a slot, returning ErrBulkheadFull or
// ErrBulkheadTimeout when none frees up in time.
func (b *Bulkhead) Execute(ctx context.Context, fn func() error) error {
	if err := b.acquire(ctx); err != nil {
		if b.cfg.OnReject != nil {
			b.cfg.OnReject(b.cfg.Name)
		}
		return err
	}
	defer b.release()
	return fn()
}

// ExecuteWithResult runs a function that returns a value through the
// bulkhead.
func ExecuteWithResult[T any](b *Bulkhead, ctx context.Context, fn func() (T, error)) (T, error) {
	var result T
	err := b.Execute(ctx, func() error {
		var fnErr error
		result, fnErr = fn()
		return fnErr
	})
	return result, err
}

// Available returns the number of free slots.
func (b *Bulkhead) Available() int {
	return b.cfg.MaxConcurrent - len(b.slots)
}

// InUse returns the number of slots currently occupied.
func (b *Bulkhead) InUse() int {
	return len(b.slots)
}

// MaxConcurrent returns the slot count.
func (b *Bulkhead) MaxConcurrent() int {
	return b.cfg.MaxConcurrent
}

func (b *Bulkhead) acquire(ctx context.Context) error {
	select {
	case b.slots <- struct{}{}:
		return nil
	default:
	}

	if b.cfg.MaxWait <= 0 {
		return ErrBulkheadFull
	}

	timer := time.NewTimer(b.cfg.MaxWait)
	defer timer.Stop()
	select {
	case b.slots <- struct{}{}:
		return nil
	case <-timer.C:
		return ErrBulkheadTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *Bulkhead) release() {
	<-b.slots
}
