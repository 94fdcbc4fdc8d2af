package errors

// ErrorCode classifies an AppError for programmatic handling.
type ErrorCode string

const (
	// Composition.
	ErrCodeInvalidComposition ErrorCode = "INVALID_COMPOSITION"
	ErrCodeTypeMismatch       ErrorCode = "TYPE_MISMATCH"
	ErrCodeValueType          ErrorCode = "VALUE_TYPE_MISMATCH"

	// Environment and execution.
	ErrCodeEnvSetup   ErrorCode = "ENV_SETUP_FAILED"
	ErrCodeEnvRelease ErrorCode = "ENV_RELEASE_FAILED"
	ErrCodeExecFailed ErrorCode = "EXEC_FAILED"
	ErrCodeTimeout    ErrorCode = "TIMEOUT"
	ErrCodeCanceled   ErrorCode = "CANCELED"

	// Registry.
	ErrCodeNotFound      ErrorCode = "NOT_FOUND"
	ErrCodeAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// Input validation.
	ErrCodeInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrCodeMissingField  ErrorCode = "MISSING_FIELD"
	ErrCodeInvalidFormat ErrorCode = "INVALID_FORMAT"

	// Configuration and fallback.
	ErrCodeConfiguration ErrorCode = "CONFIGURATION_ERROR"
	ErrCodeInternal      ErrorCode = "INTERNAL_ERROR"
)

// retryableCodes marks which codes describe transient conditions. Codes
// absent from the map are permanent.
var retryableCodes = map[ErrorCode]bool{
	ErrCodeTimeout:    true,
	ErrCodeExecFailed: true,
	ErrCodeInternal:   false,
}

// IsRetryableCode reports whether an error with this code is worth retrying.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
