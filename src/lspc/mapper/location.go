package mapper

import (
	"bytes"

	"github.com/segmentio/encoding/json"
	"github.com/uber/lspc/src/lspc/internal/errors"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
)

// locationOrLink holds the union of the Location and LocationLink wire shapes.
type locationOrLink struct {
	URI                  uri.URI         `json:"uri"`
	Range                protocol.Range  `json:"range"`
	TargetURI            uri.URI         `json:"targetUri"`
	TargetRange          *protocol.Range `json:"targetRange"`
	TargetSelectionRange *protocol.Range `json:"targetSelectionRange"`
}

func (l locationOrLink) toLocation() protocol.Location {
	if l.TargetURI == "" {
		return protocol.Location{URI: l.URI, Range: l.Range}
	}
	loc := protocol.Location{URI: l.TargetURI}
	switch {
	case l.TargetSelectionRange != nil:
		loc.Range = *l.TargetSelectionRange
	case l.TargetRange != nil:
		loc.Range = *l.TargetRange
	}
	return loc
}

// LocationsFromResult normalizes a definition or references result.
// A null or empty result yields nil, a single location yields a one element slice, and
// location links are flattened to their target URI and target selection range.
func LocationsFromResult(raw json.RawMessage) ([]protocol.Location, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	switch trimmed[0] {
	case '{':
		var item locationOrLink
		if err := json.Unmarshal(trimmed, &item); err != nil {
			return nil, &errors.MalformedMessageError{Reason: "location: " + err.Error()}
		}
		return []protocol.Location{item.toLocation()}, nil
	case '[':
		var items []locationOrLink
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, &errors.MalformedMessageError{Reason: "location list: " + err.Error()}
		}
		if len(items) == 0 {
			return nil, nil
		}
		locations := make([]protocol.Location, 0, len(items))
		for _, item := range items {
			locations = append(locations, item.toLocation())
		}
		return locations, nil
	default:
		return nil, &errors.MalformedMessageError{Reason: "unexpected location result " + string(trimmed)}
	}
}
