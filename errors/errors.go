package errors

import "fmt"

// AppError is the structured error used across the module. Code is the
// machine-readable classification; Details carry extra context for logs and
// diagnostics; Cause preserves the underlying error for errors.Is/As.
type AppError struct {
	Code      ErrorCode
	Message   string
	Retryable bool
	Details   map[string]any
	Cause     error
}

func (e *AppError) Error() string {
	s := string(e.Code) + ": " + e.Message
	if e.Cause != nil {
		s += " (cause: " + e.Cause.Error() + ")"
	}
	return s
}

func (e *AppError) Unwrap() error { return e.Cause }

// WithCause attaches the underlying error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any, len(details))
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets one detail key and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any, 1)
	}
	e.Details[key] = value
	return e
}

// New builds an AppError; the retryable flag follows the code's default.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message, Retryable: IsRetryableCode(code)}
}

// InvalidComposition reports two parts whose roles cannot be combined. Both
// operand descriptions are embedded in the message.
func InvalidComposition(left, right string) *AppError {
	return New(ErrCodeInvalidComposition, fmt.Sprintf("cannot compose %s and %s", left, right)).
		WithDetails(map[string]any{"left": left, "right": right})
}

// TypeMismatch reports an incompatible composition boundary: the left
// operand's output type does not match the right operand's input type.
func TypeMismatch(left, right string, typeOut, typeIn any) *AppError {
	msg := fmt.Sprintf("cannot compose %s and %s: output type %v does not match input type %v",
		left, right, typeOut, typeIn)
	return New(ErrCodeTypeMismatch, msg).WithDetails(map[string]any{
		"left":     left,
		"right":    right,
		"type_out": fmt.Sprintf("%v", typeOut),
		"type_in":  fmt.Sprintf("%v", typeIn),
	})
}

// ValueType reports a value that did not have the type its stage declared.
func ValueType(expected any, got any) *AppError {
	return New(ErrCodeValueType, fmt.Sprintf("expected value of type %v, got %T", expected, got)).
		WithDetails(map[string]any{
			"expected": fmt.Sprintf("%v", expected),
			"got":      fmt.Sprintf("%T", got),
		})
}

// EnvSetup reports a failed environment creation for the named part.
func EnvSetup(part string, cause error) *AppError {
	return New(ErrCodeEnvSetup, fmt.Sprintf("failed to create environment for %s", part)).
		WithDetail("part", part).WithCause(cause)
}

// EnvRelease reports a failed environment release for the named part.
func EnvRelease(part string, cause error) *AppError {
	return New(ErrCodeEnvRelease, fmt.Sprintf("failed to release environment for %s", part)).
		WithDetail("part", part).WithCause(cause)
}

// ExecFailed reports a failed subprocess stage.
func ExecFailed(binary string, cause error) *AppError {
	return New(ErrCodeExecFailed, fmt.Sprintf("command %q failed", binary)).
		WithDetail("binary", binary).WithCause(cause)
}

// Timeout reports an operation that ran out of time.
func Timeout(operation string) *AppError {
	return New(ErrCodeTimeout, fmt.Sprintf("operation %s timed out", operation)).
		WithDetail("operation", operation)
}

// Canceled reports an operation stopped by cancellation.
func Canceled(operation string) *AppError {
	return New(ErrCodeCanceled, fmt.Sprintf("operation %s was canceled", operation)).
		WithDetail("operation", operation)
}

// NotFound reports a named resource that does not exist.
func NotFound(resource, name string) *AppError {
	e := New(ErrCodeNotFound, fmt.Sprintf("%s %q not found", resource, name)).
		WithDetail("resource", resource)
	if name != "" {
		e = e.WithDetail("name", name)
	}
	return e
}

// AlreadyExists reports a name that is already registered.
func AlreadyExists(resource, name string) *AppError {
	return New(ErrCodeAlreadyExists, fmt.Sprintf("%s %q is already registered", resource, name)).
		WithDetails(map[string]any{"resource": resource, "name": name})
}

// InvalidInput reports a rejected input value.
func InvalidInput(field, reason string) *AppError {
	e := New(ErrCodeInvalidInput, "invalid input: "+reason)
	if field != "" {
		e = e.WithDetail("field", field)
	}
	return e
}

// Validation reports a failed validation with a preassembled message.
func Validation(message string) *AppError {
	return New(ErrCodeInvalidInput, message)
}

// MissingField reports a required field that was not provided.
func MissingField(field string) *AppError {
	return New(ErrCodeMissingField, "missing required field: "+field).
		WithDetail("field", field)
}

// InvalidFormat reports a field whose value has the wrong shape.
func InvalidFormat(field, expectedFormat string) *AppError {
	return New(ErrCodeInvalidFormat, fmt.Sprintf("invalid format for %s, expected: %s", field, expectedFormat)).
		WithDetails(map[string]any{"field": field, "expected_format": expectedFormat})
}

// Configuration reports an unusable configuration.
func Configuration(message string) *AppError {
	return New(ErrCodeConfiguration, message)
}

// Internal reports an unexpected failure, keeping the original as cause.
func Internal(cause error) *AppError {
	return New(ErrCodeInternal, "an unexpected error occurred").WithCause(cause)
}
