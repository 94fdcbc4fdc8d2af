package logger

import "context"

// contextKey is unexported so stamped values cannot collide with other
// packages' context keys.
type contextKey string

const (
	runIDKey    contextKey = "run_id"
	pipelineKey contextKey = "pipeline"
)

// ContextWithRunID stamps a run ID into ctx for WithContext to pick up.
func ContextWithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// ContextWithPipeline stamps a pipeline name into ctx.
func ContextWithPipeline(ctx context.Context, pipeline string) context.Context {
	return context.WithValue(ctx, pipelineKey, pipeline)
}

// RunIDFromContext returns the stamped run ID, or "" when none is set.
func RunIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(runIDKey).(string)
	return v
}

// PipelineFromContext returns the stamped pipeline name, or "" when none is
// set.
func PipelineFromContext(ctx context.Context) string {
	v, _ := ctx.Value(pipelineKey).(string)
	return v
}
