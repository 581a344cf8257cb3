package errors

import (
	"fmt"
)

// NotInitializedError indicates that an operation required a session that has completed its handshake.
type NotInitializedError struct {
	SessionID string
	State     string
}

// Error is an implementation of the error interface.
func (n *NotInitializedError) Error() string {
	return fmt.Sprintf("session %q is not initialized (state: %s)", n.SessionID, n.State)
}

// SessionNotFoundError indicates that no live session exists for the given identifier.
type SessionNotFoundError struct {
	SessionID string
}

// Error is an implementation of the error interface.
func (n *SessionNotFoundError) Error() string {
	return fmt.Sprintf("session %q not found", n.SessionID)
}

// SessionStoppedError is used to reject requests that were still pending when their session stopped.
type SessionStoppedError struct {
	SessionID string
}

// Error is an implementation of the error interface.
func (n *SessionStoppedError) Error() string {
	return fmt.Sprintf("session %q stopped", n.SessionID)
}
