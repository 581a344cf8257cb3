package mapper

import (
	"strings"

	"github.com/uber/lspc/src/lspc/entity"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
)

// InitializeParams is the handshake payload sent to a server.
// ProcessID is always serialized, as null when unset.
type InitializeParams struct {
	ProcessID        *int32                      `json:"processId"`
	ClientInfo       *protocol.ClientInfo        `json:"clientInfo,omitempty"`
	RootURI          uri.URI                     `json:"rootUri"`
	RootPath         string                      `json:"rootPath"`
	Capabilities     protocol.ClientCapabilities `json:"capabilities"`
	WorkspaceFolders []protocol.WorkspaceFolder  `json:"workspaceFolders"`
}

// ClientCapabilities lists the features this client understands.
func ClientCapabilities() protocol.ClientCapabilities {
	return protocol.ClientCapabilities{
		Workspace: &protocol.WorkspaceClientCapabilities{
			WorkspaceFolders: true,
		},
		TextDocument: &protocol.TextDocumentClientCapabilities{
			Synchronization: &protocol.TextDocumentSyncClientCapabilities{
				DidSave: true,
			},
			Hover: &protocol.HoverTextDocumentClientCapabilities{
				ContentFormat: []protocol.MarkupKind{protocol.PlainText, protocol.Markdown},
			},
			Definition: &protocol.DefinitionTextDocumentClientCapabilities{
				LinkSupport: true,
			},
			References: &protocol.ReferencesTextDocumentClientCapabilities{},
			DocumentSymbol: &protocol.DocumentSymbolClientCapabilities{
				HierarchicalDocumentSymbolSupport: true,
			},
			PublishDiagnostics: &protocol.PublishDiagnosticsClientCapabilities{
				RelatedInformation: true,
			},
		},
	}
}

// RootToInitializeParams builds the handshake payload for a session rooted at rootPath.
func RootToInitializeParams(client entity.ClientIdentity, rootPath string) *InitializeParams {
	rootURI := FilePathToURI(rootPath)
	params := &InitializeParams{
		RootURI:      rootURI,
		RootPath:     rootPath,
		Capabilities: ClientCapabilities(),
		WorkspaceFolders: []protocol.WorkspaceFolder{
			{
				URI:  string(rootURI),
				Name: workspaceFolderName(rootPath),
			},
		},
	}
	if client.Name != "" {
		params.ClientInfo = &protocol.ClientInfo{
			Name:    client.Name,
			Version: client.Version,
		}
	}
	return params
}

// workspaceFolderName returns the last segment of a root path.
func workspaceFolderName(rootPath string) string {
	segments := strings.FieldsFunc(rootPath, func(r rune) bool {
		return r == '/' || r == '\\'
	})
	if len(segments) == 0 {
		return rootPath
	}
	return segments[len(segments)-1]
}
