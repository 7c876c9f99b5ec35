package integrations

import (
	"errors"
	"net/http"
	"time"
)

var (
	// ErrNotFound is returned when the server answers 404.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (connection errors, timeouts, non-2xx responses).
	ErrNetwork = errors.New("network error")

	// ErrDecode is returned when a response body is not the expected JSON.
	ErrDecode = errors.New("decode error")
)

// NewHTTPClient creates an HTTP client with the given overall request
// timeout. A zero timeout means requests wait until the context is done.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}
