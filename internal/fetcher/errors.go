package fetcher

import (
	"errors"
	"fmt"
)

var (
	// ErrNotHTML is returned for responses that are not HTML documents.
	ErrNotHTML = errors.New("response is not html")
	// ErrTooLarge is returned when a page exceeds the configured body limit.
	ErrTooLarge = errors.New("response body too large")
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
}

// Temporary reports whether retrying later may succeed.
func (e *StatusError) Temporary() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}
