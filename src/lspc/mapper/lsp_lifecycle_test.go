package mapper

import (
	"testing"

	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uber/lspc/src/lspc/entity"
	"go.lsp.dev/protocol"
)

func TestRootToInitializeParams(t *testing.T) {
	params := RootToInitializeParams(entity.ClientIdentity{Name: "lspc", Version: "1.2.0"}, "/home/user/my project")

	assert.Nil(t, params.ProcessID)
	assert.Equal(t, "/home/user/my project", params.RootPath)
	assert.Equal(t, "file:///home/user/my%20project", string(params.RootURI))
	require.Len(t, params.WorkspaceFolders, 1)
	assert.Equal(t, "my project", params.WorkspaceFolders[0].Name)
	assert.Equal(t, string(params.RootURI), params.WorkspaceFolders[0].URI)
	require.NotNil(t, params.ClientInfo)
	assert.Equal(t, "lspc", params.ClientInfo.Name)

	b, err := json.Marshal(params)
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &decoded))
	processID, ok := decoded["processId"]
	assert.True(t, ok, "processId must be serialized")
	assert.Nil(t, processID)
}

func TestRootToInitializeParamsWithoutClientName(t *testing.T) {
	params := RootToInitializeParams(entity.ClientIdentity{}, "/srv/repo")
	assert.Nil(t, params.ClientInfo)
	assert.Equal(t, "repo", params.WorkspaceFolders[0].Name)
}

func TestClientCapabilities(t *testing.T) {
	c := ClientCapabilities()
	require.NotNil(t, c.Workspace)
	assert.True(t, c.Workspace.WorkspaceFolders)
	require.NotNil(t, c.TextDocument)
	assert.NotNil(t, c.TextDocument.Synchronization)
	assert.Equal(t, []protocol.MarkupKind{protocol.PlainText, protocol.Markdown}, c.TextDocument.Hover.ContentFormat)
	assert.True(t, c.TextDocument.Definition.LinkSupport)
	assert.NotNil(t, c.TextDocument.References)
	assert.True(t, c.TextDocument.DocumentSymbol.HierarchicalDocumentSymbolSupport)
	assert.NotNil(t, c.TextDocument.PublishDiagnostics)
}

func TestWorkspaceFolderName(t *testing.T) {
	assert.Equal(t, "project", workspaceFolderName("/home/user/project/"))
	assert.Equal(t, "dev", workspaceFolderName(`C:\Users\dev`))
	assert.Equal(t, "/", workspaceFolderName("/"))
}
