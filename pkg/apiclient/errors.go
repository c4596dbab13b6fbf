package apiclient

import "fmt"

// HTTPError reports a response with a status outside the 2xx-3xx range.
type HTTPError struct {
	Status int
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	return fmt.Sprintf("apiclient: HTTP error %d", e.Status)
}

// NetworkError reports a request that never produced a usable response: the
// transport failed, or the body could not be parsed as JSON.
type NetworkError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *NetworkError) Error() string {
	return fmt.Sprintf("apiclient: %s: %v", e.Op, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *NetworkError) Unwrap() error {
	return e.Err
}
