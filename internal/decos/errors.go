package decos

import (
	"fmt"
	"net/http"
)

// UpstreamError is a non-2xx answer from the Decos API.
type UpstreamError struct {
	StatusCode int
	Method     string
	Path       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("decos %s %s: status %d", e.Method, e.Path, e.StatusCode)
}

// Retryable reports whether the caller may try again later. The client itself
// never retries.
func (e *UpstreamError) Retryable() bool {
	return e.StatusCode >= http.StatusInternalServerError || e.StatusCode == http.StatusTooManyRequests
}
