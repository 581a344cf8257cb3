package mapper

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"go.lsp.dev/uri"
)

const _filePrefix = uri.FileScheme + "://"

var _schemePrefix = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)

// FilePathToURI converts an absolute file path into a percent-encoded file URI.
// Strings that already carry a scheme are returned unchanged.
func FilePathToURI(path string) uri.URI {
	if path == "" || _schemePrefix.MatchString(path) {
		return uri.URI(path)
	}
	if isDrivePath(path) {
		path = strings.ReplaceAll(path, `\`, "/")
	}
	return uri.File(path)
}

// URIToFilePath converts a file URI back into a decoded file path.
// Non-file URIs are returned unchanged.
func URIToFilePath(u uri.URI) string {
	s := string(u)
	if !strings.HasPrefix(s, _filePrefix) {
		return s
	}
	if _, err := url.ParseRequestURI(s); err != nil {
		trimmed := strings.TrimPrefix(s, _filePrefix)
		if decoded, err := url.PathUnescape(trimmed); err == nil {
			return decoded
		}
		return trimmed
	}
	return u.Filename()
}

// isDrivePath reports whether path starts with a Windows drive letter, e.g. C:\.
func isDrivePath(path string) bool {
	return len(path) >= 3 && unicode.IsLetter(rune(path[0])) && path[1] == ':' && (path[2] == '\\' || path[2] == '/')
}
