package uphere

import (
	"errors"
	"fmt"
	"time"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different failure categories.
const (
	// Input validation errors
	ErrCodeInvalidInput Code = "INVALID_INPUT"

	// Configuration errors (missing credentials, bad rate settings).
	// Raised before any network attempt.
	ErrCodeConfig Code = "CONFIG_ERROR"

	// Network errors
	ErrCodeNetwork             Code = "NETWORK_ERROR"
	ErrCodeRateLimitExhausted  Code = "RATE_LIMIT_EXHAUSTED"
	ErrCodeEndpointUnavailable Code = "ENDPOINT_UNAVAILABLE"
	ErrCodeUpstream            Code = "UPSTREAM_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	ErrCode Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.ErrCode, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.ErrCode, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Code returns the machine-readable error code.
func (e *Error) Code() Code { return e.ErrCode }

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		ErrCode: code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		ErrCode: code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// coder is implemented by every error type in this package that carries a code.
type coder interface {
	Code() Code
}

// Is reports whether err carries the given error code anywhere in its chain.
func Is(err error, code Code) bool {
	var c coder
	if errors.As(err, &c) {
		return c.Code() == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string for errors from outside this package.
func GetCode(err error) Code {
	var c coder
	if errors.As(err, &c) {
		return c.Code()
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// RateLimitExhaustedError is returned when every retry on an HTTP 429
// response has been consumed. Attempts counts all HTTP attempts made
// (initial request plus retries); Waited is the total backoff time spent.
type RateLimitExhaustedError struct {
	Attempts int
	Waited   time.Duration
}

// Error implements the error interface with a remediation hint.
func (e *RateLimitExhaustedError) Error() string {
	return fmt.Sprintf(
		"rate limit exceeded after %d attempts (waited %s in backoff): lower the request rate with SetRateLimit or upgrade your subscription tier",
		e.Attempts, e.Waited)
}

// Code returns the error code for this error type.
func (e *RateLimitExhaustedError) Code() Code { return ErrCodeRateLimitExhausted }

// EndpointUnavailableError is returned when a tier-gated endpoint answers
// 404. The upstream reports "not found" for endpoints outside the caller's
// subscription tier, so this is a subscription gap, not missing data.
type EndpointUnavailableError struct {
	Endpoint string // request path, e.g. "/satellite/25544/orbit"
}

// Error implements the error interface.
func (e *EndpointUnavailableError) Error() string {
	return fmt.Sprintf(
		"endpoint %s is not available on your subscription tier (upstream returned 404)",
		e.Endpoint)
}

// Code returns the error code for this error type.
func (e *EndpointUnavailableError) Code() Code { return ErrCodeEndpointUnavailable }

// UpstreamError is returned for any non-2xx status that is neither a 429
// nor a tier-gated 404. The raw status and body are preserved for
// diagnostics. Never retried.
type UpstreamError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("upstream error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("upstream error: status %d: %s", e.StatusCode, e.Body)
}

// Code returns the error code for this error type.
func (e *UpstreamError) Code() Code { return ErrCodeUpstream }
