// Package errors provides structured error handling for streaming pipelines.
// It implements a unified error type with machine-readable codes covering
// composition failures, run-time value errors, and environment lifecycle
// failures, plus retryable detection for transient conditions.
package errors
