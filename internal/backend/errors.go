package backend

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is returned for every non-2xx backend response. Callers classify
// it through the helpers below rather than matching messages.
type APIError struct {
	Method string
	URL    string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("backend api: %s %s: %d %s: %s", e.Method, e.URL, e.Status, http.StatusText(e.Status), e.Body)
	}
	return fmt.Sprintf("backend api: %s %s: %d %s", e.Method, e.URL, e.Status, http.StatusText(e.Status))
}

// StatusCode extracts the HTTP status from err when it is (or wraps) an
// APIError; zero otherwise.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// IsNotFound reports whether err is a backend 404.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// IsForbidden reports whether err is a backend 403.
func IsForbidden(err error) bool {
	return StatusCode(err) == http.StatusForbidden
}

// IsServerError reports whether err is a backend 5xx.
func IsServerError(err error) bool {
	return StatusCode(err) >= 500
}
