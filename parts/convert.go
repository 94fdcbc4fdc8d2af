package parts

import (
	"context"

	"github.com/streamkit/streamkit/errors"
	"github.com/streamkit/streamkit/stream"
)

// as asserts the dynamic type of a value pulled from upstream. A failure
// means an upstream part lied about its output type tag.
func as[T any](v any) (T, error) {
	t, ok := v.(T)
	if !ok {
		var zero T
		return zero, errors.ValueType(stream.TypeOf[T](), v)
	}
	return t, nil
}

// stateless is embedded by parts that keep no per-run resources.
type stateless struct{}

func (stateless) CreateEnv(_ context.Context) (stream.Env, error) { return nil, nil }

func (stateless) ReleaseEnv(_ context.Context, _ stream.Env) error { return nil }
