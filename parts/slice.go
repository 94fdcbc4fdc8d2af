package parts

import (
	"context"

	"github.com/streamkit/streamkit/stream"
)

// FromSlice returns a producer that yields the items in order. Each run
// reads from its own cursor, so the producer can back any number of
// concurrent runs.
func FromSlice[T any](items []T) stream.Producer {
	return &sliceSource[T]{items: items}
}

type sliceSource[T any] struct {
	stateless
	items []T
}

func (s *sliceSource[T]) TypeOut() stream.Type { return stream.TypeOf[T]() }

func (s *sliceSource[T]) Produce(_ context.Context, _ stream.Env) stream.Iterator {
	i := 0
	return stream.IteratorFunc(func(_ context.Context) (any, bool, error) {
		if i >= len(s.items) {
			return nil, false, nil
		}
		v := s.items[i]
		i++
		return v, true, nil
	})
}
