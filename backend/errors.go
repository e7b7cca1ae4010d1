package backend

import "fmt"

// NetworkError wraps a transport-level failure (connection refused, timeout,
// DNS). During polling these are transient; on submission they are fatal for
// the attempt.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ProtocolError wraps an unexpected response from the backend: a non-success
// status code or a body that could not be decoded. Detail carries the
// backend's human-readable message verbatim when one was present.
type ProtocolError struct {
	Op         string
	StatusCode int
	Detail     string
	Err        error
}

func (e *ProtocolError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("backend error during %s (status %d): %s", e.Op, e.StatusCode, e.Detail)
	}
	if e.Err != nil {
		return fmt.Sprintf("protocol error during %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("protocol error during %s (status %d)", e.Op, e.StatusCode)
}

func (e *ProtocolError) Unwrap() error { return e.Err }
