package parts

import (
	"context"

	"github.com/streamkit/streamkit/stream"
)

// FromChan returns a producer that receives from ch until it is closed.
// A canceled context aborts the receive and surfaces the context error.
func FromChan[T any](ch <-chan T) stream.Producer {
	return &chanSource[T]{ch: ch}
}

type chanSource[T any] struct {
	stateless
	ch <-chan T
}

func (s *chanSource[T]) TypeOut() stream.Type { return stream.TypeOf[T]() }

func (s *chanSource[T]) Produce(_ context.Context, _ stream.Env) stream.Iterator {
	return stream.IteratorFunc(func(ctx context.Context) (any, bool, error) {
		select {
		case v, ok := <-s.ch:
			if !ok {
				return nil, false, nil
			}
			return v, true, nil
		case <-ctx.Done():
			return nil, false, ctx.Err()
		}
	})
}
