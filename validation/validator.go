package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/streamkit/streamkit/errors"
)

// FieldError is one failed check, attached to the field that failed it.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validator accumulates field errors across a chain of checks. All check
// methods return the receiver, so a full validation reads as one expression
// finished by Err.
type Validator struct {
	errors []FieldError
}

// New creates an empty Validator.
func New() *Validator {
	return &Validator{}
}

// AddError records a failed check directly.
func (v *Validator) AddError(field, message string) {
	v.errors = append(v.errors, FieldError{Field: field, Message: message})
}

// HasErrors reports whether any check has failed so far.
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Errors returns the accumulated field errors.
func (v *Validator) Errors() []FieldError {
	return v.errors
}

// Err folds the accumulated errors into a single error, or returns nil when
// every check passed.
func (v *Validator) Err() error {
	if len(v.errors) == 0 {
		return nil
	}
	return newFieldsError(v.errors)
}

// Required fails when the value is empty or whitespace.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.AddError(field, "is required")
	}
	return v
}

// MinLength fails when the value is shorter than min bytes.
func (v *Validator) MinLength(field, value string, min int) *Validator {
	if len(value) < min {
		v.AddError(field, fmt.Sprintf("must be at least %d characters", min))
	}
	return v
}

// MaxLength fails when the value is longer than max bytes.
func (v *Validator) MaxLength(field, value string, max int) *Validator {
	if len(value) > max {
		v.AddError(field, fmt.Sprintf("must be at most %d characters", max))
	}
	return v
}

// Min fails when the value is below min.
func (v *Validator) Min(field string, value, min int) *Validator {
	if value < min {
		v.AddError(field, fmt.Sprintf("must be at least %d", min))
	}
	return v
}

// Max fails when the value is above max.
func (v *Validator) Max(field string, value, max int) *Validator {
	if value > max {
		v.AddError(field, fmt.Sprintf("must be at most %d", max))
	}
	return v
}

// Pattern fails when a non-empty value does not match re. Empty values pass;
// combine with Required to reject them.
func (v *Validator) Pattern(field, value string, re *regexp.Regexp) *Validator {
	if value != "" && !re.MatchString(value) {
		v.AddError(field, "has an invalid format")
	}
	return v
}

// OneOf fails when a non-empty value is not in the allowed set. Empty values
// pass; combine with Required to reject them.
func (v *Validator) OneOf(field, value string, allowed []string) *Validator {
	if value == "" {
		return v
	}
	for _, a := range allowed {
		if value == a {
			return v
		}
	}
	v.AddError(field, "must be one of: "+strings.Join(allowed, ", "))
	return v
}

// Custom fails with the given message when condition is false.
func (v *Validator) Custom(condition bool, field, message string) *Validator {
	if !condition {
		v.AddError(field, message)
	}
	return v
}

// newFieldsError folds field errors into one invalid-input error carrying
// the individual fields as details.
func newFieldsError(fields []FieldError) *errors.AppError {
	msgs := make([]string, len(fields))
	for i, fe := range fields {
		msgs[i] = fe.Field + ": " + fe.Message
	}
	appErr := errors.Validation(strings.Join(msgs, "; "))
	appErr.Details = map[string]any{"fields": fields}
	return appErr
}
