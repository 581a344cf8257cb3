package model

import (
	"go.lsp.dev/uri"
)

// Session is the repository layer model for a language server session.
type Session struct {
	ID        string
	Language  string
	RootPath  string
	State     int
	Documents map[uri.URI]int32
}

// ConnectionKey indexes sessions by project root and language.
type ConnectionKey struct {
	RootPath string
	Language string
}

// Connection is the repository layer model for a file routing record.
type Connection struct {
	SessionID string
	Language  string
	RootPath  string
}
