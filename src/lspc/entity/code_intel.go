package entity

import (
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
)

// Hover is the plain-text hover result for a position.
type Hover struct {
	Contents string          `json:"contents"`
	Range    *protocol.Range `json:"range,omitempty"`
}

// Symbol is a document symbol normalized from either a hierarchical or a flat server response.
type Symbol struct {
	Name           string              `json:"name"`
	Detail         string              `json:"detail,omitempty"`
	Kind           protocol.SymbolKind `json:"kind"`
	Range          protocol.Range      `json:"range"`
	SelectionRange protocol.Range      `json:"selectionRange"`
	URI            uri.URI             `json:"uri,omitempty"`
	ContainerName  string              `json:"containerName,omitempty"`
	Children       []Symbol            `json:"children,omitempty"`
}
