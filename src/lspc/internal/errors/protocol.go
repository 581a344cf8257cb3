package errors

import (
	"fmt"
	"time"
)

// RequestTimeoutError indicates that no response arrived for a request within its timeout window.
type RequestTimeoutError struct {
	Method  string
	ID      int32
	Timeout time.Duration
}

// Error is an implementation of the error interface.
func (n *RequestTimeoutError) Error() string {
	return fmt.Sprintf("request %q (id %d) timed out after %s", n.Method, n.ID, n.Timeout)
}

// ProtocolError is an explicit error envelope returned by the server.
type ProtocolError struct {
	Method  string
	Code    int32
	Message string
}

// Error is an implementation of the error interface.
func (n *ProtocolError) Error() string {
	if n.Method == "" {
		return fmt.Sprintf("server error %d: %s", n.Code, n.Message)
	}
	return fmt.Sprintf("server error for %q %d: %s", n.Method, n.Code, n.Message)
}

// MalformedMessageError indicates that an inbound payload could not be interpreted.
type MalformedMessageError struct {
	Reason string
}

// Error is an implementation of the error interface.
func (n *MalformedMessageError) Error() string {
	return fmt.Sprintf("malformed message: %s", n.Reason)
}
