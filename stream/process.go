package stream

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"

	"github.com/streamkit/streamkit/errors"
	"github.com/streamkit/streamkit/logger"
	"github.com/streamkit/streamkit/observability"
)

// Process is the terminal, fully saturated pipeline: a producer chain paired
// with a consumer chain, no dangling ports. It is not further composable:
// it satisfies only the base Part contract, so composing it fails with the
// rule-table error.
//
// A Process is immutable; Run may be called any number of times, including
// concurrently. Every run owns a fresh environment tree and iterators.
type Process struct {
	producer Producer
	consumer Consumer
	name     string
	log      *logger.Logger
	metrics  *observability.Metrics
}

func newProcess(left Producer, right Consumer) (*Process, error) {
	if err := checkBoundary(left, left.TypeOut(), right, right.TypeIn()); err != nil {
		return nil, err
	}
	return &Process{producer: left, consumer: right, name: "process"}, nil
}

// WithName returns a copy of the process carrying the given pipeline name,
// used in logs, metrics, and spans.
func (p *Process) WithName(name string) *Process {
	cp := *p
	cp.name = name
	return &cp
}

// WithLogger returns a copy of the process that logs through log instead of
// the global logger.
func (p *Process) WithLogger(log *logger.Logger) *Process {
	cp := *p
	cp.log = log
	return &cp
}

// WithMetrics returns a copy of the process that records run metrics and
// opens a run span per Run.
func (p *Process) WithMetrics(m *observability.Metrics) *Process {
	cp := *p
	cp.metrics = m
	return &cp
}

// Name returns the pipeline name used in logs, metrics, and spans.
func (p *Process) Name() string { return p.name }

// CreateEnv allocates the full environment tree for one run: the producer
// chain's environment, then the consumer chain's.
func (p *Process) CreateEnv(ctx context.Context) (Env, error) {
	return createPair(ctx, p.producer, p.consumer)
}

// ReleaseEnv releases the environment tree in reverse order, consumer side
// first. Both sides are always attempted.
func (p *Process) ReleaseEnv(ctx context.Context, env Env) error {
	return releasePair(ctx, p.producer, p.consumer, env)
}

// Run executes the pipeline once and returns the consumer's accumulated
// result.
//
// Each run gets a fresh run ID, a fresh environment tree, and a fresh pull
// chain. The consumer drives all pulling; a consumer that stops after K
// values causes exactly K pulls from the source; nothing is pulled ahead of
// demand. The environment tree is released exactly once, whether the consume
// succeeded, failed, or stopped early; release failures are joined onto the
// returned error.
func (p *Process) Run(ctx context.Context) (any, error) {
	runID := uuid.NewString()
	ctx = logger.ContextWithRunID(ctx, runID)
	ctx = logger.ContextWithPipeline(ctx, p.name)
	log := p.logger().WithContext(ctx)

	var rc *observability.RunContext
	if p.metrics != nil {
		rc = observability.NewRunContext(p.name, runID, p.metrics)
		ctx, _ = rc.StartSpanForRun(ctx, observability.SpanPipelineRun)
	}

	start := time.Now()
	log.Debug("creating run environment", logger.Fields(logger.FieldPart, Describe(p)))

	env, err := p.CreateEnv(ctx)
	if err != nil {
		err = errors.EnvSetup(Describe(p), err)
		log.Error("run environment setup failed", logger.ErrorFields("create_env", err))
		p.endRun(ctx, rc, "error", 0, err)
		return nil, err
	}
	pe, _ := env.(pairEnv)

	// Count values crossing the producer/consumer boundary; the wrapper is
	// transparent to the pull discipline.
	var pulled int64
	src := p.producer.Produce(ctx, pe.left)
	counted := IteratorFunc(func(ctx context.Context) (any, bool, error) {
		v, ok, err := src.Next(ctx)
		if ok && err == nil {
			pulled++
		}
		return v, ok, err
	})

	result, consumeErr := p.consumer.Consume(ctx, pe.right, counted)

	log.Debug("releasing run environment", logger.Fields(logger.FieldValues, pulled))
	relErr := p.ReleaseEnv(ctx, env)
	if relErr != nil {
		relErr = errors.EnvRelease(Describe(p), relErr)
	}

	switch {
	case consumeErr != nil && relErr != nil:
		err = stderrors.Join(consumeErr, relErr)
	case consumeErr != nil:
		err = consumeErr
	default:
		err = relErr
	}

	duration := time.Since(start)
	if err != nil {
		log.Error("run failed", logger.MergeWithDuration(logger.Fields(
			logger.FieldPipeline, p.name,
			logger.FieldValues, pulled,
			logger.FieldError, err.Error(),
		), duration))
		p.endRun(ctx, rc, "error", pulled, err)
		return result, err
	}

	log.Info("run completed", logger.MergeWithDuration(logger.Fields(
		logger.FieldPipeline, p.name,
		logger.FieldValues, pulled,
	), duration))
	p.endRun(ctx, rc, "ok", pulled, nil)
	return result, nil
}

func (p *Process) logger() *logger.Logger {
	if p.log != nil {
		return p.log
	}
	return logger.Get("stream")
}

func (p *Process) endRun(ctx context.Context, rc *observability.RunContext, status string, values int64, err error) {
	if rc == nil {
		return
	}
	span := observability.SpanFromContext(ctx)
	rc.EndRun(ctx, span, status, values, err)
	if err != nil {
		p.metrics.RecordError(ctx, string(errors.GetCode(err)), "run")
	}
}
