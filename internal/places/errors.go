package places

import (
	"errors"
	"fmt"
)

// UpstreamError is a semantic rejection from the maps provider: the call
// reached the service and was logically refused (bad address, unknown uid).
// It is terminal and never retried.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream rejected request: status %d: %s", e.Status, e.Message)
}

// TransportError covers everything that kept the call from completing:
// network failures, timeouts, non-2xx responses, undecodable bodies.
// Transport errors are retried with backoff.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Retryable reports whether err should be retried. Only transport-class
// failures qualify; semantic rejections short-circuit.
func Retryable(err error) bool {
	var ue *UpstreamError
	return !errors.As(err, &ue)
}
