package sessionmanager

import (
	"context"

	"github.com/uber/lspc/src/lspc/entity"
	"github.com/uber/lspc/src/lspc/mapper"
	"go.lsp.dev/protocol"
)

// OpenDocument records version 1 for filePath and sends its full text to the server.
func (c *controller) OpenDocument(ctx context.Context, sessionID string, filePath string, languageID string, content string) error {
	s, err := c.readySession(ctx, sessionID)
	if err != nil {
		return err
	}
	if languageID == "" {
		languageID = s.Language
	}

	docURI := mapper.FilePathToURI(filePath)
	version, err := c.sessions.OpenDocument(ctx, sessionID, docURI)
	if err != nil {
		return err
	}

	if err := c.notify(ctx, sessionID, protocol.MethodTextDocumentDidOpen, mapper.DidOpenParams(docURI, languageID, version, content)); err != nil {
		return err
	}

	c.connections.Register(ctx, filePath, entity.Connection{
		SessionID: sessionID,
		Language:  s.Language,
		RootPath:  s.RootPath,
	})
	return nil
}

// ChangeDocument bumps the version of filePath and replaces its full text on the server.
func (c *controller) ChangeDocument(ctx context.Context, sessionID string, filePath string, content string) error {
	if _, err := c.readySession(ctx, sessionID); err != nil {
		return err
	}

	docURI := mapper.FilePathToURI(filePath)
	version, wasOpen, err := c.sessions.NextDocumentVersion(ctx, sessionID, docURI)
	if err != nil {
		return err
	}
	if !wasOpen {
		c.logger.Warnw("change for unopened document", "session", sessionID, "uri", docURI, "version", version)
	}

	return c.notify(ctx, sessionID, protocol.MethodTextDocumentDidChange, mapper.DidChangeParams(docURI, version, content))
}

func (c *controller) CloseDocument(ctx context.Context, sessionID string, filePath string) error {
	s, err := c.sessions.Get(ctx, sessionID)
	if err != nil || !s.Ready() {
		return nil
	}

	docURI := mapper.FilePathToURI(filePath)
	if _, err := c.sessions.CloseDocument(ctx, sessionID, docURI); err != nil {
		return nil
	}
	c.connections.Unregister(ctx, filePath)

	if err := c.notify(ctx, sessionID, protocol.MethodTextDocumentDidClose, mapper.DidCloseParams(docURI)); err != nil {
		c.logger.Warnw("close notification failed", "session", sessionID, "uri", docURI, "error", err)
	}
	return nil
}
