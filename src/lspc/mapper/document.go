package mapper

import (
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
)

// DidChangeTextDocumentParams carries full document replacements only.
type DidChangeTextDocumentParams struct {
	TextDocument   protocol.VersionedTextDocumentIdentifier `json:"textDocument"`
	ContentChanges []FullTextChange                         `json:"contentChanges"`
}

// FullTextChange replaces the whole content of a document.
type FullTextChange struct {
	Text string `json:"text"`
}

// DidOpenParams builds the payload announcing an opened document.
func DidOpenParams(docURI uri.URI, languageID string, version int32, text string) *protocol.DidOpenTextDocumentParams {
	return &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{
			URI:        docURI,
			LanguageID: protocol.LanguageIdentifier(languageID),
			Version:    version,
			Text:       text,
		},
	}
}

// DidChangeParams builds a single full-document replacement tagged with version.
func DidChangeParams(docURI uri.URI, version int32, text string) *DidChangeTextDocumentParams {
	return &DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: docURI},
			Version:                version,
		},
		ContentChanges: []FullTextChange{{Text: text}},
	}
}

// DidCloseParams builds the payload announcing a closed document.
func DidCloseParams(docURI uri.URI) *protocol.DidCloseTextDocumentParams {
	return &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: docURI},
	}
}

// PositionParams addresses a position within a document.
func PositionParams(docURI uri.URI, pos protocol.Position) *protocol.TextDocumentPositionParams {
	return &protocol.TextDocumentPositionParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: docURI},
		Position:     pos,
	}
}

// ReferenceParams builds a references query.
func ReferenceParams(docURI uri.URI, pos protocol.Position, includeDeclaration bool) *protocol.ReferenceParams {
	return &protocol.ReferenceParams{
		TextDocumentPositionParams: *PositionParams(docURI, pos),
		Context: protocol.ReferenceContext{
			IncludeDeclaration: includeDeclaration,
		},
	}
}

// DocumentSymbolParams builds a document symbols query.
func DocumentSymbolParams(docURI uri.URI) *protocol.DocumentSymbolParams {
	return &protocol.DocumentSymbolParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: docURI},
	}
}
