// Package logger wraps zerolog with the conventions the rest of the module
// relies on: a configurable global logger, named component loggers, and
// structured field helpers.
//
// The stream engine stamps run IDs and pipeline names into the context;
// WithContext copies them onto every line a run emits.
//
// Typical wiring:
//
//	logger.Init(logger.Config{Level: "info", Format: "json"})
//	log := logger.Get("stream")
//	log.Info("run completed", logger.Fields("values", 42))
package logger
