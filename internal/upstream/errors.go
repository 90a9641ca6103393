package upstream

import (
	"errors"
	"fmt"
)

// ErrUnauthorized is returned when the backend rejects the bearer token on any
// endpoint other than login/verify. The API layer reacts by clearing the
// tenant session and forcing a re-login.
var ErrUnauthorized = errors.New("upstream rejected the session token")

// APIError carries the backend's error payload through to the portal response
// unchanged. When the backend omits a message a generic per-class fallback is
// substituted.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("upstream error %d: %s", e.Status, e.Message)
}

// fallbackMessage maps an HTTP status to a human-readable string for backend
// responses that carry no message of their own.
func fallbackMessage(status int) string {
	switch {
	case status == 404:
		return "resource not found"
	case status == 403:
		return "you do not have access to this resource"
	case status >= 400 && status < 500:
		return "the request was rejected, please check the submitted data"
	default:
		return "the service is temporarily unavailable, please try again later"
	}
}

// AsAPIError unwraps an *APIError if err carries one.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
