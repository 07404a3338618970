package errors

import "fmt"

// ErrCode represents an error code
type ErrCode string

const (
	ErrCodeNotFound              ErrCode = "NOT_FOUND"
	ErrCodeUnauthorized          ErrCode = "UNAUTHORIZED"
	ErrCodeMalformedResponse     ErrCode = "MALFORMED_RESPONSE"
	ErrCodeMalformedRecord       ErrCode = "MALFORMED_RECORD"
	ErrCodeUnsupportedImputation ErrCode = "UNSUPPORTED_IMPUTATION"
	ErrCodeBadRequest            ErrCode = "BAD_REQUEST"
	ErrCodeInternal              ErrCode = "INTERNAL_ERROR"
)

// AppError represents an application error
type AppError struct {
	Code    ErrCode
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// NewUnauthorizedError creates a new unauthorized error
func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeUnauthorized,
		Message: message,
	}
}

// NewMalformedResponseError creates an error for an API response that could
// not be understood
func NewMalformedResponseError(message string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeMalformedResponse,
		Message: message,
		Err:     err,
	}
}

// NewMalformedRecordError creates an error for an issue record whose shape
// the field-path resolution cannot navigate
func NewMalformedRecordError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeMalformedRecord,
		Message: message,
	}
}

// NewUnsupportedImputationError creates a fatal configuration error for an
// imputation strategy the janitor does not implement
func NewUnsupportedImputationError(strategy string) *AppError {
	return &AppError{
		Code:    ErrCodeUnsupportedImputation,
		Message: fmt.Sprintf("imputation strategy %q is not supported", strategy),
	}
}

// NewBadRequestError creates a new bad request error
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeBadRequest,
		Message: message,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: message,
		Err:     err,
	}
}

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code == ErrCodeNotFound
	}
	return false
}

// IsUnauthorized checks if the error is an authorization failure
func IsUnauthorized(err error) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code == ErrCodeUnauthorized
	}
	return false
}

// IsMalformedRecord checks if the error is a malformed record error
func IsMalformedRecord(err error) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code == ErrCodeMalformedRecord
	}
	return false
}

// IsUnsupportedImputation checks if the error is an unsupported imputation
// strategy error
func IsUnsupportedImputation(err error) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code == ErrCodeUnsupportedImputation
	}
	return false
}
