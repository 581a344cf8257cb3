package errors

import (
	"fmt"
)

// ServerUnavailableError indicates that no analysis server binary exists for a language and none can be downloaded.
type ServerUnavailableError struct {
	Language string
}

// Error is an implementation of the error interface.
func (n *ServerUnavailableError) Error() string {
	return fmt.Sprintf("no language server available for %q", n.Language)
}

// ServerNotInstalledError indicates that a server can be downloaded for a language, but requires an explicit install action.
type ServerNotInstalledError struct {
	Language    string
	DownloadURL string
}

// Error is an implementation of the error interface.
func (n *ServerNotInstalledError) Error() string {
	if n.DownloadURL == "" {
		return fmt.Sprintf("language server for %q is not installed", n.Language)
	}
	return fmt.Sprintf("language server for %q is not installed, download it from %s", n.Language, n.DownloadURL)
}

// ServerStartError indicates that the process layer failed to launch a server.
type ServerStartError struct {
	Language string
	RootPath string
	Reason   string
}

// Error is an implementation of the error interface.
func (n *ServerStartError) Error() string {
	return fmt.Sprintf("starting %q language server in %q: %s", n.Language, n.RootPath, n.Reason)
}
