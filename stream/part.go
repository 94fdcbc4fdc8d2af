package stream

import (
	"context"
	"fmt"
	"reflect"
)

// Type is an opaque boundary type tag. Any equality-comparable value serves:
// two tags are compatible when they compare equal (structural equality, not
// instance identity). TypeOf is the conventional constructor; plain strings
// work too. Tags are rendered with %v in diagnostics.
type Type any

// TypeOf returns the canonical type tag for T. Separate calls for the same T
// yield equal tags.
func TypeOf[T any]() Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// AnyType is a wildcard tag compatible with every boundary type. Used by
// sinks that accept arbitrary values (e.g. a draining consumer).
var AnyType Type = anyType{}

type anyType struct{}

func (anyType) String() string { return "any" }

// Env is an opaque per-run environment value. Created by the part that owns
// it, threaded through by the engine, never inspected. All mutable run state
// lives here (or in iterators created during the run), never on the part.
type Env any

// Iterator provides pull-based sequential access to a stream of values.
// Values are produced one at a time, only when pulled.
type Iterator interface {
	// Next returns the next value. Returns (nil, false, nil) when exhausted;
	// exhaustion is a terminal signal, not an error.
	Next(ctx context.Context) (any, bool, error)
}

// IteratorFunc adapts a function to the Iterator interface.
type IteratorFunc func(ctx context.Context) (any, bool, error)

func (f IteratorFunc) Next(ctx context.Context) (any, bool, error) { return f(ctx) }

// Part is the base contract shared by every pipeline stage. Parts must be
// immutable after construction: the same Part value supports overlapping
// concurrent runs, each with its own environment.
type Part interface {
	// CreateEnv allocates a fresh run-scoped environment. May return nil for
	// stateless parts.
	CreateEnv(ctx context.Context) (Env, error)
	// ReleaseEnv cleans up an environment created by CreateEnv. Called
	// exactly once per run, with the value CreateEnv returned.
	ReleaseEnv(ctx context.Context, env Env) error
}

// Producer is a part that emits values. It produces nothing on its own;
// the returned iterator is pulled by whatever sits downstream.
type Producer interface {
	Part
	// TypeOut is the tag of the values the producer emits.
	TypeOut() Type
	// Produce returns a lazy iterator over the producer's values for one run.
	// env must be the value returned by this part's CreateEnv.
	Produce(ctx context.Context, env Env) Iterator
}

// Consumer is a part that drives the pull chain and accumulates a result.
type Consumer interface {
	Part
	// TypeIn is the tag of the values the consumer accepts.
	TypeIn() Type
	// Consume pulls from src until exhaustion or until it decides to stop
	// early, and returns its accumulated result. env must be the value
	// returned by this part's CreateEnv.
	Consume(ctx context.Context, env Env, src Iterator) (any, error)
}

// Pipe is a part that is both a consumer of its upstream and a producer to
// its downstream. Transform rewrites the upstream iterator lazily: pulling
// one value downstream may pull zero or more values upstream (filters,
// expanders, and batchers are all valid pipe shapes), but relative order is
// preserved.
type Pipe interface {
	Part
	// TypeIn is the tag of the values the pipe accepts.
	TypeIn() Type
	// TypeOut is the tag of the values the pipe emits.
	TypeOut() Type
	// Transform returns an iterator over the rewritten stream. env must be
	// the value returned by this part's CreateEnv.
	Transform(ctx context.Context, env Env, src Iterator) Iterator
}

// Describe renders a part's boundary shape for diagnostics: a producer as
// "(() -> T)", a consumer as "(T -> ())", a pipe as "(Tin -> Tout)", and a
// process as "(() -> ())". Role classification checks Pipe first, so a part
// satisfying several role interfaces renders as a pipe.
func Describe(p Part) string {
	switch v := p.(type) {
	case *Process:
		return "(() -> ())"
	case Pipe:
		return fmt.Sprintf("(%v -> %v)", v.TypeIn(), v.TypeOut())
	case Producer:
		return fmt.Sprintf("(() -> %v)", v.TypeOut())
	case Consumer:
		return fmt.Sprintf("(%v -> ())", v.TypeIn())
	default:
		return "(unknown)"
	}
}
