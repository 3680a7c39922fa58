package mathclient

import (
	"errors"
	"fmt"
)

// ConnectionMessage is the generic text shown for transport failures.
const ConnectionMessage = "connection error with the server"

// ServiceError is a failure reported by the calculator service itself.
// Message is the service's text, verbatim.
type ServiceError struct {
	Status  int
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// ConnectionError wraps a transport failure: the service could not be reached
// or its reply could not be decoded.
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// IsConnectionError reports whether err is (or wraps) a ConnectionError.
func IsConnectionError(err error) bool {
	var ce *ConnectionError
	return errors.As(err, &ce)
}

// AsServiceError extracts a ServiceError from err.
func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
