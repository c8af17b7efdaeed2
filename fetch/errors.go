package fetch

import (
	"errors"
	"fmt"
)

// ErrorType defines the category of a fetch failure
type ErrorType string

const (
	// TimeoutError means every attempt timed out
	TimeoutError ErrorType = "timeout"
	// NetworkError is a non-timeout transport failure; never retried
	NetworkError ErrorType = "network"
	// HTTPError means a response arrived with a status other than 200 or 302
	HTTPError ErrorType = "http"
	// CancelledError means the caller's context ended the execution
	CancelledError ErrorType = "cancelled"
	// NotAttemptedError means the retry budget was zero
	NotAttemptedError ErrorType = "not_attempted"
	// ConversionErrorType marks a failed response decode
	ConversionErrorType ErrorType = "conversion"
)

// FetchError describes why the last Get/Post did not succeed.
// It is an outcome, not something Get/Post return; read it through Fetcher.Err.
//
//nolint:revive // FetchError reads better than Error at call sites
type FetchError struct {
	Type       ErrorType
	Method     string
	URL        string
	Attempts   int
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	switch e.Type {
	case HTTPError:
		return fmt.Sprintf("fetch %s %s: unexpected status %d", e.Method, e.URL, e.StatusCode)
	case NotAttemptedError:
		return fmt.Sprintf("fetch %s %s: no attempts made (retries is 0)", e.Method, e.URL)
	}
	if e.Err != nil {
		return fmt.Sprintf("fetch %s %s: %s error after %d attempt(s): %v", e.Method, e.URL, e.Type, e.Attempts, e.Err)
	}
	return fmt.Sprintf("fetch %s %s: %s error after %d attempt(s)", e.Method, e.URL, e.Type, e.Attempts)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ConversionError reports that a response body could not be decoded into Target.
type ConversionError struct {
	Target string
	Err    error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("conversion error: cannot convert response to %s: %v", e.Target, e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// IsErrorType checks if err is a fetch or conversion error of the given type
func IsErrorType(err error, errorType ErrorType) bool {
	if err == nil {
		return false
	}
	var convErr *ConversionError
	if errors.As(err, &convErr) {
		return errorType == ConversionErrorType
	}
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		return fetchErr.Type == errorType
	}
	return false
}

// IsHTTPStatusError checks if err is an HTTP status failure with the given code
func IsHTTPStatusError(err error, statusCode int) bool {
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		return fetchErr.Type == HTTPError && fetchErr.StatusCode == statusCode
	}
	return false
}
