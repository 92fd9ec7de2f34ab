package errors

import (
	"errors"
	"fmt"
)

// Fatal conditions. Each aborts a run; none is retried.
var (
	// ErrConfidentialsNotSupplied means an API key and an API secret were not both supplied
	ErrConfidentialsNotSupplied = errors.New("an API key and an API secret must be supplied")

	// ErrBearerTokenNotFetched means the token endpoint rejected the key/secret pair
	ErrBearerTokenNotFetched = errors.New("couldn't fetch the bearer token")

	// ErrInvalidDownloadPath means the download destination is not a directory
	ErrInvalidDownloadPath = errors.New("download path must be a directory")
)

// ErrorType represents different types of errors that can occur
type ErrorType string

const (
	ErrorTypeNetwork     ErrorType = "network"
	ErrorTypeRateLimit   ErrorType = "rate_limit"
	ErrorTypeAuth        ErrorType = "auth"
	ErrorTypeParsing     ErrorType = "parsing"
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeServerError ErrorType = "server_error"
	ErrorTypeConfig      ErrorType = "config"
	ErrorTypeFilesystem  ErrorType = "filesystem"
	ErrorTypeUnknown     ErrorType = "unknown"
)

// Error represents an API or setup error with type information
type Error struct {
	Type    ErrorType
	Message string
	Code    int
	Err     error
}

func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

// Unwrap exposes the wrapped cause so errors.Is matches the sentinels above
func (e *Error) Unwrap() error {
	return e.Err
}

// New builds a typed error wrapping cause
func New(errorType ErrorType, code int, cause error, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errorType,
		Message: fmt.Sprintf(format, args...),
		Code:    code,
		Err:     cause,
	}
}

// TypeOf returns the ErrorType carried by err, or ErrorTypeUnknown
func TypeOf(err error) ErrorType {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Type
	}
	return ErrorTypeUnknown
}

// IsFatal reports whether err is one of the conditions that must abort a run
func IsFatal(err error) bool {
	return errors.Is(err, ErrConfidentialsNotSupplied) ||
		errors.Is(err, ErrBearerTokenNotFetched) ||
		errors.Is(err, ErrInvalidDownloadPath)
}

// IsRetryable checks if an error type should be retried
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeNetwork, ErrorTypeRateLimit, ErrorTypeServerError:
		return true
	default:
		return false
	}
}

// ClassifyStatus maps an HTTP status code to an ErrorType
func ClassifyStatus(statusCode int) ErrorType {
	switch {
	case statusCode == 0:
		return ErrorTypeNetwork
	case statusCode == 401 || statusCode == 403:
		return ErrorTypeAuth
	case statusCode == 404:
		return ErrorTypeNotFound
	case statusCode == 429:
		return ErrorTypeRateLimit
	case statusCode >= 500:
		return ErrorTypeServerError
	default:
		return ErrorTypeUnknown
	}
}
