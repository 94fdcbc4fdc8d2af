package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/streamkit/streamkit/logger"
	"github.com/streamkit/streamkit/version"
)

// MeterConfig configures the OTLP metric exporter.
type MeterConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	// Endpoint is the OTLP HTTP collector address, host:port.
	Endpoint string
	// Insecure disables TLS, for local collectors.
	Insecure bool
	// Interval between metric exports; zero keeps the SDK default.
	Interval time.Duration
}

// DefaultMeterConfig returns development defaults: a local collector, no
// TLS, 15s export interval.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: version.Version,
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter installs a global meter provider exporting over OTLP HTTP.
// The caller owns the returned provider and must shut it down on exit.
func InitMeter(ctx context.Context, config MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(config.Endpoint)}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(ctx, config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))
	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics bundles the instruments the stream engine records on.
type Metrics struct {
	runTotal    metric.Int64Counter
	runDuration metric.Float64Histogram
	runsActive  metric.Int64UpDownCounter
	valuesTotal metric.Int64Counter
	errorTotal  metric.Int64Counter
}

// NewMetrics creates the engine's instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	var m Metrics
	var err error

	if m.runTotal, err = meter.Int64Counter("run.total",
		metric.WithDescription("Completed pipeline runs")); err != nil {
		return nil, fmt.Errorf("creating run.total counter: %w", err)
	}
	if m.runDuration, err = meter.Float64Histogram("run.duration",
		metric.WithDescription("Pipeline run duration"),
		metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("creating run.duration histogram: %w", err)
	}
	if m.runsActive, err = meter.Int64UpDownCounter("runs.active",
		metric.WithDescription("Pipeline runs currently in flight")); err != nil {
		return nil, fmt.Errorf("creating runs.active gauge: %w", err)
	}
	if m.valuesTotal, err = meter.Int64Counter("values.total",
		metric.WithDescription("Values pulled through pipelines")); err != nil {
		return nil, fmt.Errorf("creating values.total counter: %w", err)
	}
	if m.errorTotal, err = meter.Int64Counter("error.total",
		metric.WithDescription("Errors by type and stage")); err != nil {
		return nil, fmt.Errorf("creating error.total counter: %w", err)
	}
	return &m, nil
}

// RecordRunStart marks a run as in flight.
func (m *Metrics) RecordRunStart(ctx context.Context) {
	m.runsActive.Add(ctx, 1)
}

// RecordRunEnd retires an in-flight run and records its outcome.
func (m *Metrics) RecordRunEnd(ctx context.Context, pipeline, status string, duration time.Duration) {
	m.runsActive.Add(ctx, -1)
	m.runTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("pipeline", pipeline),
		attribute.String("status", status),
	))
	m.runDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("pipeline", pipeline),
	))
}

// RecordValues counts values that crossed a whole pipeline.
func (m *Metrics) RecordValues(ctx context.Context, pipeline string, count int64) {
	m.valuesTotal.Add(ctx, count, metric.WithAttributes(
		attribute.String("pipeline", pipeline),
	))
}

// RecordStageValues counts values that crossed a single stage.
func (m *Metrics) RecordStageValues(ctx context.Context, stage string, count int64) {
	m.valuesTotal.Add(ctx, count, metric.WithAttributes(
		attribute.String("stage", stage),
	))
}

// RecordError counts one error by type and stage.
func (m *Metrics) RecordError(ctx context.Context, errType, stage string) {
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("type", errType),
		attribute.String("stage", stage),
	))
}
