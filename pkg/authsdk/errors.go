package authsdk

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError is a non-success response from the service.
type APIError struct {
	StatusCode int

	// Message is the response body with surrounding whitespace and JSON
	// string quotes removed, e.g. "Invalid credentials".
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("authsdk: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("authsdk: %d %s", e.StatusCode, e.Message)
}

func newAPIError(status int, body []byte) *APIError {
	msg := strings.TrimSpace(string(body))
	msg = strings.TrimSuffix(strings.TrimPrefix(msg, `"`), `"`)
	return &APIError{StatusCode: status, Message: msg}
}

// StatusCode returns the HTTP status of an *APIError in err's chain, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsUnauthorized reports a 401: bad credentials, a dead refresh token or a
// rejected access token.
func IsUnauthorized(err error) bool { return StatusCode(err) == http.StatusUnauthorized }

func IsNotFound(err error) bool { return StatusCode(err) == http.StatusNotFound }

// IsRateLimited reports a 429.
func IsRateLimited(err error) bool { return StatusCode(err) == http.StatusTooManyRequests }
