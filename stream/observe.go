package stream

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/streamkit/streamkit/logger"
	"github.com/streamkit/streamkit/observability"
)

// WithLogging wraps a part with structured execution logging: environment
// create/release and per-stage value and error counts. Role-preserving: a
// Pipe stays a Pipe, a Producer a Producer, a Consumer a Consumer; parts
// satisfying no role interface are returned unchanged.
func WithLogging(p Part, log *logger.Logger) Part {
	if log == nil {
		log = logger.Get("stream")
	}
	switch v := p.(type) {
	case Pipe:
		return &loggingPipe{inner: v, log: log}
	case Producer:
		return &loggingProducer{inner: v, log: log}
	case Consumer:
		return &loggingConsumer{inner: v, log: log}
	default:
		return p
	}
}

// WithTracing wraps a part with an OpenTelemetry span covering the stage's
// run-scoped phase (environment creation through release). Pull errors are
// recorded on the span. Role-preserving, like WithLogging.
func WithTracing(p Part) Part {
	switch v := p.(type) {
	case Pipe:
		return &tracingPipe{inner: v}
	case Producer:
		return &tracingProducer{inner: v}
	case Consumer:
		return &tracingConsumer{inner: v}
	default:
		return p
	}
}

// WithMetrics wraps a part with per-stage metric recording: values passed
// through and pull errors. Role-preserving, like WithLogging.
func WithMetrics(p Part, m *observability.Metrics) Part {
	switch v := p.(type) {
	case Pipe:
		return &meteredPipe{inner: v, m: m}
	case Producer:
		return &meteredProducer{inner: v, m: m}
	case Consumer:
		return &meteredConsumer{inner: v, m: m}
	default:
		return p
	}
}

// --- logging wrappers ---

// loggedIter counts values through an iterator and reports terminal
// outcomes. Exhaustion is logged once, on first observation.
type loggedIter struct {
	inner Iterator
	log   *logger.Logger
	stage string
	count int64
	done  bool
}

func (it *loggedIter) Next(ctx context.Context) (any, bool, error) {
	v, ok, err := it.inner.Next(ctx)
	if err != nil {
		it.log.Error("stage failed", logger.Fields(
			logger.FieldStage, it.stage,
			logger.FieldValues, it.count,
			logger.FieldError, err.Error(),
		))
		return v, ok, err
	}
	if !ok {
		if !it.done {
			it.done = true
			it.log.Debug("stage exhausted", logger.Fields(
				logger.FieldStage, it.stage,
				logger.FieldValues, it.count,
			))
		}
		return nil, false, nil
	}
	it.count++
	return v, true, nil
}

func logEnvCreate(ctx context.Context, log *logger.Logger, stage string, err error) {
	if err != nil {
		log.WithContext(ctx).Error("stage env setup failed", logger.Fields(
			logger.FieldStage, stage,
			logger.FieldError, err.Error(),
		))
		return
	}
	log.WithContext(ctx).Debug("stage env created", logger.Fields(logger.FieldStage, stage))
}

func logEnvRelease(ctx context.Context, log *logger.Logger, stage string, err error) {
	if err != nil {
		log.WithContext(ctx).Error("stage env release failed", logger.Fields(
			logger.FieldStage, stage,
			logger.FieldError, err.Error(),
		))
		return
	}
	log.WithContext(ctx).Debug("stage env released", logger.Fields(logger.FieldStage, stage))
}

type loggingPipe struct {
	inner Pipe
	log   *logger.Logger
}

func (p *loggingPipe) TypeIn() Type  { return p.inner.TypeIn() }
func (p *loggingPipe) TypeOut() Type { return p.inner.TypeOut() }

func (p *loggingPipe) CreateEnv(ctx context.Context) (Env, error) {
	env, err := p.inner.CreateEnv(ctx)
	logEnvCreate(ctx, p.log, Describe(p.inner), err)
	return env, err
}

func (p *loggingPipe) ReleaseEnv(ctx context.Context, env Env) error {
	err := p.inner.ReleaseEnv(ctx, env)
	logEnvRelease(ctx, p.log, Describe(p.inner), err)
	return err
}

func (p *loggingPipe) Transform(ctx context.Context, env Env, src Iterator) Iterator {
	return &loggedIter{
		inner: p.inner.Transform(ctx, env, src),
		log:   p.log.WithContext(ctx),
		stage: Describe(p.inner),
	}
}

type loggingProducer struct {
	inner Producer
	log   *logger.Logger
}

func (p *loggingProducer) TypeOut() Type { return p.inner.TypeOut() }

func (p *loggingProducer) CreateEnv(ctx context.Context) (Env, error) {
	env, err := p.inner.CreateEnv(ctx)
	logEnvCreate(ctx, p.log, Describe(p.inner), err)
	return env, err
}

func (p *loggingProducer) ReleaseEnv(ctx context.Context, env Env) error {
	err := p.inner.ReleaseEnv(ctx, env)
	logEnvRelease(ctx, p.log, Describe(p.inner), err)
	return err
}

func (p *loggingProducer) Produce(ctx context.Context, env Env) Iterator {
	return &loggedIter{
		inner: p.inner.Produce(ctx, env),
		log:   p.log.WithContext(ctx),
		stage: Describe(p.inner),
	}
}

type loggingConsumer struct {
	inner Consumer
	log   *logger.Logger
}

func (c *loggingConsumer) TypeIn() Type { return c.inner.TypeIn() }

func (c *loggingConsumer) CreateEnv(ctx context.Context) (Env, error) {
	env, err := c.inner.CreateEnv(ctx)
	logEnvCreate(ctx, c.log, Describe(c.inner), err)
	return env, err
}

func (c *loggingConsumer) ReleaseEnv(ctx context.Context, env Env) error {
	err := c.inner.ReleaseEnv(ctx, env)
	logEnvRelease(ctx, c.log, Describe(c.inner), err)
	return err
}

func (c *loggingConsumer) Consume(ctx context.Context, env Env, src Iterator) (any, error) {
	log := c.log.WithContext(ctx)
	stage := Describe(c.inner)
	watched := &loggedIter{inner: src, log: log, stage: stage}

	start := time.Now()
	result, err := c.inner.Consume(ctx, env, watched)
	if err != nil {
		log.Error("stage consume failed", logger.MergeWithDuration(logger.Fields(
			logger.FieldStage, stage,
			logger.FieldValues, watched.count,
			logger.FieldError, err.Error(),
		), time.Since(start)))
		return result, err
	}
	log.Debug("stage consumed", logger.MergeWithDuration(logger.Fields(
		logger.FieldStage, stage,
		logger.FieldValues, watched.count,
	), time.Since(start)))
	return result, nil
}

// --- tracing wrappers ---

// traceEnv pairs the wrapped part's environment with the stage span. The
// span lives exactly as long as the environment, so it always ends even
// when the consumer stops early and the iterator never exhausts.
type traceEnv struct {
	inner Env
	span  trace.Span
}

func startStageSpan(ctx context.Context, p Part) (context.Context, trace.Span) {
	ctx, span := observability.StartSpan(ctx, observability.SpanStage)
	observability.SetSpanAttribute(ctx, observability.AttrPart, Describe(p))
	return ctx, span
}

func releaseTraced(ctx context.Context, inner Part, env Env) error {
	te, _ := env.(traceEnv)
	err := inner.ReleaseEnv(ctx, te.inner)
	if te.span != nil {
		if err != nil {
			te.span.RecordError(err)
		}
		te.span.End()
	}
	return err
}

// tracedIter records pull errors on the stage span.
type tracedIter struct {
	inner Iterator
	span  trace.Span
}

func (it *tracedIter) Next(ctx context.Context) (any, bool, error) {
	v, ok, err := it.inner.Next(ctx)
	if err != nil && it.span != nil {
		it.span.RecordError(err)
	}
	return v, ok, err
}

type tracingPipe struct {
	inner Pipe
}

func (p *tracingPipe) TypeIn() Type  { return p.inner.TypeIn() }
func (p *tracingPipe) TypeOut() Type { return p.inner.TypeOut() }

func (p *tracingPipe) CreateEnv(ctx context.Context) (Env, error) {
	ctx, span := startStageSpan(ctx, p.inner)
	env, err := p.inner.CreateEnv(ctx)
	if err != nil {
		span.RecordError(err)
		span.End()
		return nil, err
	}
	return traceEnv{inner: env, span: span}, nil
}

func (p *tracingPipe) ReleaseEnv(ctx context.Context, env Env) error {
	return releaseTraced(ctx, p.inner, env)
}

func (p *tracingPipe) Transform(ctx context.Context, env Env, src Iterator) Iterator {
	te, _ := env.(traceEnv)
	return &tracedIter{inner: p.inner.Transform(ctx, te.inner, src), span: te.span}
}

type tracingProducer struct {
	inner Producer
}

func (p *tracingProducer) TypeOut() Type { return p.inner.TypeOut() }

func (p *tracingProducer) CreateEnv(ctx context.Context) (Env, error) {
	ctx, span := startStageSpan(ctx, p.inner)
	env, err := p.inner.CreateEnv(ctx)
	if err != nil {
		span.RecordError(err)
		span.End()
		return nil, err
	}
	return traceEnv{inner: env, span: span}, nil
}

func (p *tracingProducer) ReleaseEnv(ctx context.Context, env Env) error {
	return releaseTraced(ctx, p.inner, env)
}

func (p *tracingProducer) Produce(ctx context.Context, env Env) Iterator {
	te, _ := env.(traceEnv)
	return &tracedIter{inner: p.inner.Produce(ctx, te.inner), span: te.span}
}

type tracingConsumer struct {
	inner Consumer
}

func (c *tracingConsumer) TypeIn() Type { return c.inner.TypeIn() }

func (c *tracingConsumer) CreateEnv(ctx context.Context) (Env, error) {
	ctx, span := startStageSpan(ctx, c.inner)
	env, err := c.inner.CreateEnv(ctx)
	if err != nil {
		span.RecordError(err)
		span.End()
		return nil, err
	}
	return traceEnv{inner: env, span: span}, nil
}

func (c *tracingConsumer) ReleaseEnv(ctx context.Context, env Env) error {
	return releaseTraced(ctx, c.inner, env)
}

func (c *tracingConsumer) Consume(ctx context.Context, env Env, src Iterator) (any, error) {
	te, _ := env.(traceEnv)
	result, err := c.inner.Consume(ctx, te.inner, src)
	if err != nil && te.span != nil {
		te.span.RecordError(err)
	}
	return result, err
}

// --- metrics wrappers ---

// meteredIter counts values and pull errors for one stage.
type meteredIter struct {
	inner Iterator
	m     *observability.Metrics
	stage string
}

func (it *meteredIter) Next(ctx context.Context) (any, bool, error) {
	v, ok, err := it.inner.Next(ctx)
	if err != nil {
		it.m.RecordError(ctx, "pull", it.stage)
		return v, ok, err
	}
	if ok {
		it.m.RecordStageValues(ctx, it.stage, 1)
	}
	return v, ok, err
}

type meteredPipe struct {
	inner Pipe
	m     *observability.Metrics
}

func (p *meteredPipe) TypeIn() Type  { return p.inner.TypeIn() }
func (p *meteredPipe) TypeOut() Type { return p.inner.TypeOut() }

func (p *meteredPipe) CreateEnv(ctx context.Context) (Env, error) {
	return p.inner.CreateEnv(ctx)
}

func (p *meteredPipe) ReleaseEnv(ctx context.Context, env Env) error {
	return p.inner.ReleaseEnv(ctx, env)
}

func (p *meteredPipe) Transform(ctx context.Context, env Env, src Iterator) Iterator {
	return &meteredIter{inner: p.inner.Transform(ctx, env, src), m: p.m, stage: Describe(p.inner)}
}

type meteredProducer struct {
	inner Producer
	m     *observability.Metrics
}

func (p *meteredProducer) TypeOut() Type { return p.inner.TypeOut() }

func (p *meteredProducer) CreateEnv(ctx context.Context) (Env, error) {
	return p.inner.CreateEnv(ctx)
}

func (p *meteredProducer) ReleaseEnv(ctx context.Context, env Env) error {
	return p.inner.ReleaseEnv(ctx, env)
}

func (p *meteredProducer) Produce(ctx context.Context, env Env) Iterator {
	return &meteredIter{inner: p.inner.Produce(ctx, env), m: p.m, stage: Describe(p.inner)}
}

type meteredConsumer struct {
	inner Consumer
	m     *observability.Metrics
}

func (c *meteredConsumer) TypeIn() Type { return c.inner.TypeIn() }

func (c *meteredConsumer) CreateEnv(ctx context.Context) (Env, error) {
	return c.inner.CreateEnv(ctx)
}

func (c *meteredConsumer) ReleaseEnv(ctx context.Context, env Env) error {
	return c.inner.ReleaseEnv(ctx, env)
}

func (c *meteredConsumer) Consume(ctx context.Context, env Env, src Iterator) (any, error) {
	stage := Describe(c.inner)
	result, err := c.inner.Consume(ctx, env, &meteredIter{inner: src, m: c.m, stage: stage})
	if err != nil {
		c.m.RecordError(ctx, "consume", stage)
	}
	return result, err
}
