// Package entity contains the domain types of the language client.
package entity

import (
	"go.lsp.dev/uri"
)

// SessionState is the lifecycle state of a session.
type SessionState int

const (
	// SessionStateStarting indicates that the process layer has been asked to launch a server.
	SessionStateStarting SessionState = iota
	// SessionStateInitializing indicates that a session id was assigned and the handshake is in flight.
	SessionStateInitializing
	// SessionStateReady indicates that the handshake completed and the initialized notification was sent.
	SessionStateReady
	// SessionStateShuttingDown indicates that a stop was requested.
	SessionStateShuttingDown
	// SessionStateStopped indicates that the session was torn down.
	SessionStateStopped
)

// String implements fmt.Stringer.
func (s SessionState) String() string {
	switch s {
	case SessionStateStarting:
		return "starting"
	case SessionStateInitializing:
		return "initializing"
	case SessionStateReady:
		return "ready"
	case SessionStateShuttingDown:
		return "shutting down"
	case SessionStateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Session entity representing one live analysis server scoped to a language and project root.
type Session struct {
	ID       string       `json:"id" zap:"id"`
	Language string       `json:"language" zap:"language"`
	RootPath string       `json:"rootPath" zap:"rootPath"`
	State    SessionState `json:"state" zap:"state"`
	// Documents maps each open document to its current version.
	Documents map[uri.URI]int32 `json:"-" zap:"-"`
}

// Ready reports whether the session accepts document and request traffic.
func (s *Session) Ready() bool {
	return s != nil && s.State == SessionStateReady
}

// ClientIdentity is announced to servers during the handshake.
type ClientIdentity struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// ServerStatus describes whether a server binary for a language can be used.
type ServerStatus struct {
	Available   bool   `json:"available"`
	Installed   bool   `json:"installed"`
	InstallPath string `json:"installPath,omitempty"`
	CanDownload bool   `json:"canDownload"`
	DownloadURL string `json:"downloadUrl,omitempty"`
}

// StartResult is the outcome of asking the process layer to launch a server.
type StartResult struct {
	SessionID string
	Success   bool
	Error     string
}

// InboundEvent is a raw message received from a server process.
type InboundEvent struct {
	SessionID string
	Message   []byte
}
