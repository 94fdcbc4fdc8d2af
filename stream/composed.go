package stream

import (
	"context"
	stderrors "errors"
)

// pairEnv holds the child environments of a composed part, in composition
// order.
type pairEnv struct {
	left  Env
	right Env
}

// createPair allocates the left child's environment, then the right's. If
// the right child fails, the left environment is released before the error
// propagates, so partial setup leaks nothing. A release failure on
// that path is joined onto the create error.
func createPair(ctx context.Context, left, right Part) (Env, error) {
	lenv, err := left.CreateEnv(ctx)
	if err != nil {
		return nil, err
	}
	renv, err := right.CreateEnv(ctx)
	if err != nil {
		if relErr := left.ReleaseEnv(ctx, lenv); relErr != nil {
			return nil, stderrors.Join(err, relErr)
		}
		return nil, err
	}
	return pairEnv{left: lenv, right: renv}, nil
}

// releasePair releases both child environments in reverse creation order.
// Both releases are always attempted; failures are joined and surfaced.
func releasePair(ctx context.Context, left, right Part, env Env) error {
	pe, _ := env.(pairEnv)
	rightErr := right.ReleaseEnv(ctx, pe.right)
	leftErr := left.ReleaseEnv(ctx, pe.left)
	return stderrors.Join(rightErr, leftErr)
}

// fusedPipe is two pipes glued at a validated boundary. Type queries
// delegate to the children on every call; the inner boundary is checked once,
// at construction.
type fusedPipe struct {
	left  Pipe
	right Pipe
}

func fusePipes(left, right Pipe) (Pipe, error) {
	if err := checkBoundary(left, left.TypeOut(), right, right.TypeIn()); err != nil {
		return nil, err
	}
	return &fusedPipe{left: left, right: right}, nil
}

func (p *fusedPipe) TypeIn() Type  { return p.left.TypeIn() }
func (p *fusedPipe) TypeOut() Type { return p.right.TypeOut() }

func (p *fusedPipe) CreateEnv(ctx context.Context) (Env, error) {
	return createPair(ctx, p.left, p.right)
}

func (p *fusedPipe) ReleaseEnv(ctx context.Context, env Env) error {
	return releasePair(ctx, p.left, p.right, env)
}

func (p *fusedPipe) Transform(ctx context.Context, env Env, src Iterator) Iterator {
	pe, _ := env.(pairEnv)
	return p.right.Transform(ctx, pe.right, p.left.Transform(ctx, pe.left, src))
}

// appendedProducer is a producer with a pipe appended to its output.
type appendedProducer struct {
	left  Producer
	right Pipe
}

func appendProducer(left Producer, right Pipe) (Producer, error) {
	if err := checkBoundary(left, left.TypeOut(), right, right.TypeIn()); err != nil {
		return nil, err
	}
	return &appendedProducer{left: left, right: right}, nil
}

func (p *appendedProducer) TypeOut() Type { return p.right.TypeOut() }

func (p *appendedProducer) CreateEnv(ctx context.Context) (Env, error) {
	return createPair(ctx, p.left, p.right)
}

func (p *appendedProducer) ReleaseEnv(ctx context.Context, env Env) error {
	return releasePair(ctx, p.left, p.right, env)
}

func (p *appendedProducer) Produce(ctx context.Context, env Env) Iterator {
	pe, _ := env.(pairEnv)
	return p.right.Transform(ctx, pe.right, p.left.Produce(ctx, pe.left))
}

// prependedConsumer is a consumer with a pipe prepended to its input.
type prependedConsumer struct {
	left  Pipe
	right Consumer
}

func prependConsumer(left Pipe, right Consumer) (Consumer, error) {
	if err := checkBoundary(left, left.TypeOut(), right, right.TypeIn()); err != nil {
		return nil, err
	}
	return &prependedConsumer{left: left, right: right}, nil
}

func (c *prependedConsumer) TypeIn() Type { return c.left.TypeIn() }

func (c *prependedConsumer) CreateEnv(ctx context.Context) (Env, error) {
	return createPair(ctx, c.left, c.right)
}

func (c *prependedConsumer) ReleaseEnv(ctx context.Context, env Env) error {
	return releasePair(ctx, c.left, c.right, env)
}

func (c *prependedConsumer) Consume(ctx context.Context, env Env, src Iterator) (any, error) {
	pe, _ := env.(pairEnv)
	return c.right.Consume(ctx, pe.right, c.left.Transform(ctx, pe.left, src))
}
