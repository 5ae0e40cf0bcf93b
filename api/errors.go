// ABOUTME: Error hierarchy for the kudo backend client SDK.
// ABOUTME: Maps HTTP status codes and envelope error codes onto typed, errors.As-friendly errors.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// APIError is the base error type for all errors in the client SDK. All other
// error types embed APIError either directly or transitively.
type APIError struct {
	Message string
	Cause   error
}

func (e *APIError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Cause
}

// RequestError represents a failure reported by the backend, carrying the
// HTTP status, the envelope error code, and the raw response for debugging.
type RequestError struct {
	APIError
	StatusCode int
	Code       string
	Raw        json.RawMessage
}

func (e *RequestError) Error() string { return e.APIError.Error() }
func (e *RequestError) Unwrap() error { return e.APIError.Unwrap() }

// As enables errors.As to match APIError from a RequestError.
func (e *RequestError) As(target any) bool {
	if t, ok := target.(**APIError); ok {
		*t = &e.APIError
		return true
	}
	return false
}

// NotFoundError represents a 404: the board or post does not exist.
type NotFoundError struct {
	RequestError
}

// ValidationError represents a 400/422: the request was malformed, for
// example a reorder payload whose id set or positions the server rejected,
// or a post missing its message text.
type ValidationError struct {
	RequestError
}

// AuthenticationError represents a 401: no valid identity token.
type AuthenticationError struct {
	RequestError
}

// AuthorizationError represents a 403: the identity is valid but not allowed
// to perform the operation (for example a non-owner reorder that slipped past
// UI gating).
type AuthorizationError struct {
	RequestError
}

// RateLimitError represents a 429.
type RateLimitError struct {
	RequestError
}

// NetworkError represents a transport-level failure: the request never
// produced an HTTP response.
type NetworkError struct {
	APIError
}

func as(target any, re *RequestError) bool {
	switch t := target.(type) {
	case **RequestError:
		*t = re
		return true
	case **APIError:
		*t = &re.APIError
		return true
	default:
		return false
	}
}

func (e *NotFoundError) As(target any) bool       { return as(target, &e.RequestError) }
func (e *ValidationError) As(target any) bool     { return as(target, &e.RequestError) }
func (e *AuthenticationError) As(target any) bool { return as(target, &e.RequestError) }
func (e *AuthorizationError) As(target any) bool  { return as(target, &e.RequestError) }
func (e *RateLimitError) As(target any) bool      { return as(target, &e.RequestError) }

// errorFromStatus wraps an envelope error into the typed hierarchy based on
// the HTTP status code.
func errorFromStatus(status int, code, message string, raw json.RawMessage) error {
	if message == "" {
		message = fmt.Sprintf("request failed with status %d", status)
	}
	re := RequestError{
		APIError:   APIError{Message: message},
		StatusCode: status,
		Code:       code,
		Raw:        raw,
	}
	switch status {
	case http.StatusNotFound:
		return &NotFoundError{re}
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return &ValidationError{re}
	case http.StatusUnauthorized:
		return &AuthenticationError{re}
	case http.StatusForbidden:
		return &AuthorizationError{re}
	case http.StatusTooManyRequests:
		return &RateLimitError{re}
	default:
		return &re
	}
}
