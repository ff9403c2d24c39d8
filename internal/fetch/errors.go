package fetch

import (
	"errors"
	"fmt"
)

// NetworkError reports that a remote could not be reached at all: dial, DNS,
// TLS, timeout or a connection dropped mid-transfer. It is the only failure
// that permits falling back to a cached copy.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error fetching %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// StatusError reports a remote that answered with a failure status.
type StatusError struct {
	URL    string
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetching %s: remote answered %d %s", e.URL, e.Code, e.Status)
}

// IsNetworkError reports whether err, or anything it wraps, is a NetworkError.
func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}
