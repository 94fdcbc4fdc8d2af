package parts

import (
	"context"

	"github.com/streamkit/streamkit/resilience"
	"github.com/streamkit/streamkit/stream"
)

// Generate returns a producer that pulls values from fn until it reports
// ok=false or an error.
func Generate[T any](fn func(ctx context.Context) (T, bool, error)) stream.Producer {
	return &generateSource[T]{fn: fn}
}

type generateSource[T any] struct {
	stateless
	fn func(ctx context.Context) (T, bool, error)
}

func (s *generateSource[T]) TypeOut() stream.Type { return stream.TypeOf[T]() }

func (s *generateSource[T]) Produce(_ context.Context, _ stream.Env) stream.Iterator {
	return stream.IteratorFunc(func(ctx context.Context) (any, bool, error) {
		v, ok, err := s.fn(ctx)
		if err != nil || !ok {
			return nil, false, err
		}
		return v, true, nil
	})
}

// --- Map ---

// MapOption configures a Map pipe.
type MapOption func(*mapOptions)

type mapOptions struct {
	res ResilienceConfig
}

// WithRetry retries the mapping function per value using the given policy.
func WithRetry(cfg resilience.RetryConfig) MapOption {
	return func(o *mapOptions) { o.res.Retry = &cfg }
}

// WithResilience runs the mapping function through the full resilience
// chain: rate limiter, bulkhead, circuit breaker, retry.
func WithResilience(cfg ResilienceConfig) MapOption {
	return func(o *mapOptions) { o.res = cfg }
}

// Map returns a pipe that transforms each value with fn.
func Map[I, O any](fn func(ctx context.Context, v I) (O, error), opts ...MapOption) stream.Pipe {
	o := mapOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	return &mapPipe[I, O]{fn: fn, res: buildResilience(o.res)}
}

type mapPipe[I, O any] struct {
	stateless
	fn  func(ctx context.Context, v I) (O, error)
	res *resilienceState
}

func (p *mapPipe[I, O]) TypeIn() stream.Type  { return stream.TypeOf[I]() }
func (p *mapPipe[I, O]) TypeOut() stream.Type { return stream.TypeOf[O]() }

func (p *mapPipe[I, O]) Transform(_ context.Context, _ stream.Env, src stream.Iterator) stream.Iterator {
	return stream.IteratorFunc(func(ctx context.Context) (any, bool, error) {
		v, ok, err := src.Next(ctx)
		if err != nil || !ok {
			return nil, false, err
		}
		in, err := as[I](v)
		if err != nil {
			return nil, false, err
		}
		out, err := p.apply(ctx, in)
		if err != nil {
			return nil, false, err
		}
		return out, true, nil
	})
}

func (p *mapPipe[I, O]) apply(ctx context.Context, v I) (O, error) {
	return applyResilience(ctx, p.res, func() (O, error) {
		return p.fn(ctx, v)
	})
}

// --- Filter ---

// Filter returns a pipe that passes through values for which pred reports
// true.
func Filter[T any](pred func(ctx context.Context, v T) (bool, error)) stream.Pipe {
	return &filterPipe[T]{pred: pred}
}

type filterPipe[T any] struct {
	stateless
	pred func(ctx context.Context, v T) (bool, error)
}

func (p *filterPipe[T]) TypeIn() stream.Type  { return stream.TypeOf[T]() }
func (p *filterPipe[T]) TypeOut() stream.Type { return stream.TypeOf[T]() }

func (p *filterPipe[T]) Transform(_ context.Context, _ stream.Env, src stream.Iterator) stream.Iterator {
	return stream.IteratorFunc(func(ctx context.Context) (any, bool, error) {
		for {
			v, ok, err := src.Next(ctx)
			if err != nil || !ok {
				return nil, false, err
			}
			in, err := as[T](v)
			if err != nil {
				return nil, false, err
			}
			keep, err := p.pred(ctx, in)
			if err != nil {
				return nil, false, err
			}
			if keep {
				return in, true, nil
			}
		}
	})
}

// --- FlatMap ---

// FlatMap returns a pipe that expands each value into zero or more output
// values.
func FlatMap[I, O any](fn func(ctx context.Context, v I) ([]O, error)) stream.Pipe {
	return &flatMapPipe[I, O]{fn: fn}
}

type flatMapPipe[I, O any] struct {
	stateless
	fn func(ctx context.Context, v I) ([]O, error)
}

func (p *flatMapPipe[I, O]) TypeIn() stream.Type  { return stream.TypeOf[I]() }
func (p *flatMapPipe[I, O]) TypeOut() stream.Type { return stream.TypeOf[O]() }

func (p *flatMapPipe[I, O]) Transform(_ context.Context, _ stream.Env, src stream.Iterator) stream.Iterator {
	var pending []O
	return stream.IteratorFunc(func(ctx context.Context) (any, bool, error) {
		for {
			if len(pending) > 0 {
				v := pending[0]
				pending = pending[1:]
				return v, true, nil
			}
			v, ok, err := src.Next(ctx)
			if err != nil || !ok {
				return nil, false, err
			}
			in, err := as[I](v)
			if err != nil {
				return nil, false, err
			}
			out, err := p.fn(ctx, in)
			if err != nil {
				return nil, false, err
			}
			pending = out
		}
	})
}

// --- Batch ---

// Batch returns a pipe that groups values into slices of at most size.
// A final short batch is flushed when the upstream is exhausted.
func Batch[T any](size int) stream.Pipe {
	if size < 1 {
		size = 1
	}
	return &batchPipe[T]{size: size}
}

type batchPipe[T any] struct {
	stateless
	size int
}

func (p *batchPipe[T]) TypeIn() stream.Type  { return stream.TypeOf[T]() }
func (p *batchPipe[T]) TypeOut() stream.Type { return stream.TypeOf[[]T]() }

func (p *batchPipe[T]) Transform(_ context.Context, _ stream.Env, src stream.Iterator) stream.Iterator {
	done := false
	return stream.IteratorFunc(func(ctx context.Context) (any, bool, error) {
		if done {
			return nil, false, nil
		}
		batch := make([]T, 0, p.size)
		for len(batch) < p.size {
			v, ok, err := src.Next(ctx)
			if err != nil {
				return nil, false, err
			}
			if !ok {
				done = true
				break
			}
			in, err := as[T](v)
			if err != nil {
				return nil, false, err
			}
			batch = append(batch, in)
		}
		if len(batch) == 0 {
			return nil, false, nil
		}
		return batch, true, nil
	})
}

// --- Take ---

// Take returns a pipe that passes through the first n values and then
// reports exhaustion without pulling the upstream again.
func Take[T any](n int) stream.Pipe {
	return &takePipe[T]{n: n}
}

type takePipe[T any] struct {
	stateless
	n int
}

func (p *takePipe[T]) TypeIn() stream.Type  { return stream.TypeOf[T]() }
func (p *takePipe[T]) TypeOut() stream.Type { return stream.TypeOf[T]() }

func (p *takePipe[T]) Transform(_ context.Context, _ stream.Env, src stream.Iterator) stream.Iterator {
	seen := 0
	return stream.IteratorFunc(func(ctx context.Context) (any, bool, error) {
		if seen >= p.n {
			return nil, false, nil
		}
		v, ok, err := src.Next(ctx)
		if err != nil || !ok {
			return nil, false, err
		}
		in, err := as[T](v)
		if err != nil {
			return nil, false, err
		}
		seen++
		return in, true, nil
	})
}

// --- Tap ---

// Tap returns a pipe that invokes fn for each value without altering the
// stream.
func Tap[T any](fn func(ctx context.Context, v T)) stream.Pipe {
	return &tapPipe[T]{fn: fn}
}

type tapPipe[T any] struct {
	stateless
	fn func(ctx context.Context, v T)
}

func (p *tapPipe[T]) TypeIn() stream.Type  { return stream.TypeOf[T]() }
func (p *tapPipe[T]) TypeOut() stream.Type { return stream.TypeOf[T]() }

func (p *tapPipe[T]) Transform(_ context.Context, _ stream.Env, src stream.Iterator) stream.Iterator {
	return stream.IteratorFunc(func(ctx context.Context) (any, bool, error) {
		v, ok, err := src.Next(ctx)
		if err != nil || !ok {
			return nil, false, err
		}
		in, err := as[T](v)
		if err != nil {
			return nil, false, err
		}
		p.fn(ctx, in)
		return in, true, nil
	})
}
