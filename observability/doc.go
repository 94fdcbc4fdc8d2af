// Package observability provides OpenTelemetry tracing and metrics integration
// for pipeline runs.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("streamkit"))
//	defer tp.Shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, observability.SpanPipelineRun)
//	defer span.End()
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("streamkit"))
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(observability.Meter("streamkit"))
//	metrics.RecordRunEnd(ctx, "word-count", "ok", duration)
//
// Per-run context:
//
//	rc := observability.NewRunContext("word-count", runID, metrics)
//	ctx, span := rc.StartSpanForRun(ctx, observability.SpanPipelineRun)
//	// ... drive the pipeline ...
//	rc.EndRun(ctx, span, "ok", values, err)
package observability
