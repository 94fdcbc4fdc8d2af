// Package validation checks inputs before they reach a pipeline.
//
// Struct tags cover configuration structs:
//
//	type Options struct {
//	    Name string `validate:"required"`
//	    Size int    `validate:"gte=1"`
//	}
//	err := validation.Validate(opts)
//
// The fluent Validator covers values assembled at runtime, collecting every
// failure instead of stopping at the first:
//
//	err := validation.New().
//	    Required("name", name).
//	    Min("size", size, 1).
//	    Err()
//
// Both report the same error shape: an invalid-input error whose details
// carry one entry per failed field.
package validation
