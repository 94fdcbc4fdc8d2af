package parts

import (
	"context"

	"github.com/streamkit/streamkit/stream"
)

// CollectOption configures a Collect consumer.
type CollectOption func(*collectOptions)

type collectOptions struct {
	limit int
}

// Limit stops collection after n values. The upstream is pulled exactly n
// times; a limit of zero pulls nothing.
func Limit(n int) CollectOption {
	return func(o *collectOptions) { o.limit = n }
}

// Collect returns a consumer that accumulates the stream into a []T.
// An empty stream yields an empty, non-nil slice.
func Collect[T any](opts ...CollectOption) stream.Consumer {
	o := collectOptions{limit: -1}
	for _, opt := range opts {
		opt(&o)
	}
	return &collectSink[T]{limit: o.limit}
}

type collectSink[T any] struct {
	stateless
	limit int
}

func (s *collectSink[T]) TypeIn() stream.Type { return stream.TypeOf[T]() }

func (s *collectSink[T]) Consume(ctx context.Context, _ stream.Env, src stream.Iterator) (any, error) {
	out := []T{}
	for s.limit < 0 || len(out) < s.limit {
		v, ok, err := src.Next(ctx)
		if err != nil {
			return out, err
		}
		if !ok {
			break
		}
		in, err := as[T](v)
		if err != nil {
			return out, err
		}
		out = append(out, in)
	}
	return out, nil
}

// ForEach returns a consumer that applies fn to each value. Its result is
// the number of values seen.
func ForEach[T any](fn func(ctx context.Context, v T) error) stream.Consumer {
	return &forEachSink[T]{fn: fn}
}

type forEachSink[T any] struct {
	stateless
	fn func(ctx context.Context, v T) error
}

func (s *forEachSink[T]) TypeIn() stream.Type { return stream.TypeOf[T]() }

func (s *forEachSink[T]) Consume(ctx context.Context, _ stream.Env, src stream.Iterator) (any, error) {
	count := 0
	for {
		v, ok, err := src.Next(ctx)
		if err != nil {
			return count, err
		}
		if !ok {
			return count, nil
		}
		in, err := as[T](v)
		if err != nil {
			return count, err
		}
		if err := s.fn(ctx, in); err != nil {
			return count, err
		}
		count++
	}
}

// Discard returns a consumer that drains the stream and reports how many
// values it saw. It accepts any element type.
func Discard() stream.Consumer {
	return &discardSink{}
}

type discardSink struct {
	stateless
}

func (s *discardSink) TypeIn() stream.Type { return stream.AnyType }

func (s *discardSink) Consume(ctx context.Context, _ stream.Env, src stream.Iterator) (any, error) {
	count := 0
	for {
		_, ok, err := src.Next(ctx)
		if err != nil {
			return count, err
		}
		if !ok {
			return count, nil
		}
		count++
	}
}
