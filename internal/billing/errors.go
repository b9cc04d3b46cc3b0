package billing

import (
	"errors"
	"fmt"
)

// ErrorCode classifies API failures so callers can branch on the failure
// category without matching message strings.
type ErrorCode string

const (
	// ErrUnauthorized indicates the credential was rejected (HTTP 401).
	ErrUnauthorized ErrorCode = "unauthorized"
	// ErrForbidden indicates the account lacks permission (HTTP 403).
	ErrForbidden ErrorCode = "forbidden"
	// ErrNotFound indicates the resource does not exist (HTTP 404).
	ErrNotFound ErrorCode = "not_found"
	// ErrDuplicateSubmission indicates the request repeated a recent
	// submission (HTTP 409).
	ErrDuplicateSubmission ErrorCode = "duplicate_submission"
	// ErrValidation indicates the payload failed validation (HTTP 422).
	ErrValidation ErrorCode = "validation_failed"
	// ErrServer indicates a remote server failure (HTTP 5xx).
	ErrServer ErrorCode = "server_error"
	// ErrUnknown covers any other non-success status.
	ErrUnknown ErrorCode = "unknown"
)

// ErrorCodeFromStatus maps an HTTP status code to an ErrorCode.
func ErrorCodeFromStatus(status int) ErrorCode {
	switch status {
	case 401:
		return ErrUnauthorized
	case 403:
		return ErrForbidden
	case 404:
		return ErrNotFound
	case 409:
		return ErrDuplicateSubmission
	case 422:
		return ErrValidation
	default:
		if status >= 500 && status < 600 {
			return ErrServer
		}
		return ErrUnknown
	}
}

// Suggestion returns a short hint for resolving this kind of failure.
func (c ErrorCode) Suggestion() string {
	switch c {
	case ErrUnauthorized:
		return "Run 'cfy auth login' to store a valid API key"
	case ErrForbidden:
		return "Check the API key's permissions for this subdomain"
	case ErrNotFound:
		return "Verify the resource path and identifier values"
	case ErrDuplicateSubmission:
		return "The same submission was already accepted; check before resending"
	case ErrValidation:
		return "Check the request body against the API documentation"
	case ErrServer:
		return "The billing service had an internal error; try again later"
	default:
		return ""
	}
}

// APIError is a non-success response from the billing service. It
// carries the original status code and whatever error payload the
// service returned.
type APIError struct {
	StatusCode int
	Code       ErrorCode
	Payload    map[string]any
}

func (e *APIError) Error() string {
	return fmt.Sprintf("billing API error: %s (status %d)", e.Code, e.StatusCode)
}

// ConnectionError is a transport-level failure reaching the service:
// DNS, TLS, refused connections, timeouts. No HTTP response was
// obtained.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection error: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// ConfigurationError is a caller-contract violation detected before any
// request is made: an invalid response format, an empty chain, a
// malformed data argument.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

// codeIs reports whether err is an *APIError with the given code.
func codeIs(err error, code ErrorCode) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

// IsUnauthorized reports whether err is a 401 response.
func IsUnauthorized(err error) bool { return codeIs(err, ErrUnauthorized) }

// IsForbidden reports whether err is a 403 response.
func IsForbidden(err error) bool { return codeIs(err, ErrForbidden) }

// IsNotFound reports whether err is a 404 response.
func IsNotFound(err error) bool { return codeIs(err, ErrNotFound) }

// IsDuplicateSubmission reports whether err is a 409 response.
func IsDuplicateSubmission(err error) bool { return codeIs(err, ErrDuplicateSubmission) }

// IsValidation reports whether err is a 422 response.
func IsValidation(err error) bool { return codeIs(err, ErrValidation) }

// IsServerError reports whether err is a 5xx response.
func IsServerError(err error) bool { return codeIs(err, ErrServer) }

// IsConnectionError reports whether err is a transport-level failure.
func IsConnectionError(err error) bool {
	var connErr *ConnectionError
	return errors.As(err, &connErr)
}
