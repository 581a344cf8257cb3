package errors

import stderr "errors"

// New returns an error that formats as the given text.
// Each call to New returns a distinct error value even if the text is identical.
func New(msg string) error {
	return stderr.New(msg)
}

var (
	// ClientClosedError reports that the client was disposed while a request was in flight.
	ClientClosedError = New("language client closed")
)

// IsTimeout reports whether the error chain contains a RequestTimeoutError.
func IsTimeout(e error) bool {
	var t *RequestTimeoutError
	return stderr.As(e, &t)
}

// IsNotInitialized reports whether the error chain contains a NotInitializedError.
func IsNotInitialized(e error) bool {
	var n *NotInitializedError
	return stderr.As(e, &n)
}

// IsServerMissing reports whether the error indicates that no analysis server binary is usable,
// either because none is available or because one must be installed first.
func IsServerMissing(e error) bool {
	var unavailable *ServerUnavailableError
	var notInstalled *ServerNotInstalledError
	return stderr.As(e, &unavailable) || stderr.As(e, &notInstalled)
}
