package httpclient

import (
	"errors"
	"net/http"
)

// ErrMalformedResponse is returned when a 2xx body cannot be decoded
var ErrMalformedResponse = errors.New("malformed response")

// APIError is returned for every non-2xx response
type APIError struct {
	StatusCode int
	Message    string
	// Notified is set when the message was already shown to the user
	Notified bool
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return http.StatusText(e.StatusCode)
}

// Unauthorized reports whether the server refused the credentials (401/403)
func (e *APIError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// IsAuthError reports whether err is a 401/403 APIError
func IsAuthError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Unauthorized()
}

// WasNotified reports whether err already produced a user notification
func WasNotified(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Notified
}

// StatusCode returns the HTTP status carried by err, or 0
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
