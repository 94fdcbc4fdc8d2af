package errors

import (
	stderrors "errors"
)

// AsAppError extracts the first AppError in err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	ok := stderrors.As(err, &appErr)
	return appErr, ok
}

// IsAppError reports whether err carries an AppError anywhere in its chain.
func IsAppError(err error) bool {
	_, ok := AsAppError(err)
	return ok
}

// GetCode returns the code of the AppError in err's chain, or "" if none.
func GetCode(err error) ErrorCode {
	appErr, ok := AsAppError(err)
	if !ok {
		return ""
	}
	return appErr.Code
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// IsRetryable reports whether err is marked retryable. Plain errors are not.
func IsRetryable(err error) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Retryable
}

// Wrap coerces any error into an AppError. AppErrors anywhere in the chain
// pass through unchanged; plain errors become internal errors with the
// original as cause. Wrap(nil) returns nil.
func Wrap(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}
	return Internal(err)
}
