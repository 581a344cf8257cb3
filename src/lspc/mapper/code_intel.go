package mapper

import (
	"bytes"
	"strings"

	"github.com/segmentio/encoding/json"
	"github.com/uber/lspc/src/lspc/entity"
	"github.com/uber/lspc/src/lspc/internal/errors"
	"go.lsp.dev/protocol"
)

type hoverWire struct {
	Contents json.RawMessage `json:"contents"`
	Range    *protocol.Range `json:"range"`
}

// markedContent covers both MarkupContent and the object form of MarkedString.
type markedContent struct {
	Kind     string `json:"kind"`
	Language string `json:"language"`
	Value    string `json:"value"`
}

type symbolWire struct {
	Name           string              `json:"name"`
	Detail         string              `json:"detail"`
	Kind           protocol.SymbolKind `json:"kind"`
	Range          *protocol.Range     `json:"range"`
	SelectionRange *protocol.Range     `json:"selectionRange"`
	Children       []symbolWire        `json:"children"`
	Location       *protocol.Location  `json:"location"`
	ContainerName  string              `json:"containerName"`
}

// HoverFromResult flattens a hover result into plain text. A null result or empty contents yield nil.
func HoverFromResult(raw json.RawMessage) (*entity.Hover, error) {
	if isNull(raw) {
		return nil, nil
	}
	var w hoverWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, &errors.MalformedMessageError{Reason: "hover: " + err.Error()}
	}
	text, err := flattenHoverContents(w.Contents)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, nil
	}
	return &entity.Hover{Contents: text, Range: w.Range}, nil
}

func flattenHoverContents(raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if isNull(trimmed) {
		return "", nil
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", &errors.MalformedMessageError{Reason: "hover contents: " + err.Error()}
		}
		return strings.TrimSpace(s), nil
	case '{':
		var c markedContent
		if err := json.Unmarshal(trimmed, &c); err != nil {
			return "", &errors.MalformedMessageError{Reason: "hover contents: " + err.Error()}
		}
		return strings.TrimSpace(c.Value), nil
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return "", &errors.MalformedMessageError{Reason: "hover contents: " + err.Error()}
		}
		parts := make([]string, 0, len(items))
		for _, item := range items {
			text, err := flattenHoverContents(item)
			if err != nil {
				return "", err
			}
			if text != "" {
				parts = append(parts, text)
			}
		}
		return strings.Join(parts, "\n\n"), nil
	default:
		return "", &errors.MalformedMessageError{Reason: "unexpected hover contents " + string(trimmed)}
	}
}

// SymbolsFromResult normalizes either a DocumentSymbol tree or a flat SymbolInformation list.
func SymbolsFromResult(raw json.RawMessage) ([]entity.Symbol, error) {
	if isNull(raw) {
		return nil, nil
	}
	var items []symbolWire
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, &errors.MalformedMessageError{Reason: "document symbols: " + err.Error()}
	}
	if len(items) == 0 {
		return nil, nil
	}
	return symbolsToEntity(items), nil
}

func symbolsToEntity(items []symbolWire) []entity.Symbol {
	symbols := make([]entity.Symbol, 0, len(items))
	for _, item := range items {
		s := entity.Symbol{
			Name:          item.Name,
			Detail:        item.Detail,
			Kind:          item.Kind,
			ContainerName: item.ContainerName,
		}
		if item.Location != nil {
			s.URI = item.Location.URI
			s.Range = item.Location.Range
			s.SelectionRange = item.Location.Range
		}
		if item.Range != nil {
			s.Range = *item.Range
			s.SelectionRange = *item.Range
		}
		if item.SelectionRange != nil {
			s.SelectionRange = *item.SelectionRange
		}
		if len(item.Children) > 0 {
			s.Children = symbolsToEntity(item.Children)
		}
		symbols = append(symbols, s)
	}
	return symbols
}

func isNull(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, _null)
}
