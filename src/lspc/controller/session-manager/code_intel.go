package sessionmanager

import (
	"context"

	"github.com/segmentio/encoding/json"
	"github.com/uber/lspc/src/lspc/entity"
	"github.com/uber/lspc/src/lspc/internal/errors"
	"github.com/uber/lspc/src/lspc/mapper"
	"go.lsp.dev/protocol"
)

// Code intelligence queries are advisory: any failure is logged and reported as no result.

func (c *controller) Hover(ctx context.Context, sessionID string, filePath string, pos protocol.Position) *entity.Hover {
	raw, ok := c.query(ctx, sessionID, protocol.MethodTextDocumentHover, mapper.PositionParams(mapper.FilePathToURI(filePath), pos))
	if !ok {
		return nil
	}
	hover, err := mapper.HoverFromResult(raw)
	if err != nil {
		c.degrade(sessionID, protocol.MethodTextDocumentHover, err)
		return nil
	}
	return hover
}

func (c *controller) Definition(ctx context.Context, sessionID string, filePath string, pos protocol.Position) []protocol.Location {
	raw, ok := c.query(ctx, sessionID, protocol.MethodTextDocumentDefinition, mapper.PositionParams(mapper.FilePathToURI(filePath), pos))
	if !ok {
		return nil
	}
	return c.locations(sessionID, protocol.MethodTextDocumentDefinition, raw)
}

func (c *controller) References(ctx context.Context, sessionID string, filePath string, pos protocol.Position, includeDeclaration bool) []protocol.Location {
	params := mapper.ReferenceParams(mapper.FilePathToURI(filePath), pos, includeDeclaration)
	raw, ok := c.query(ctx, sessionID, protocol.MethodTextDocumentReferences, params)
	if !ok {
		return nil
	}
	return c.locations(sessionID, protocol.MethodTextDocumentReferences, raw)
}

func (c *controller) DocumentSymbols(ctx context.Context, sessionID string, filePath string) []entity.Symbol {
	raw, ok := c.query(ctx, sessionID, protocol.MethodTextDocumentDocumentSymbol, mapper.DocumentSymbolParams(mapper.FilePathToURI(filePath)))
	if !ok {
		return nil
	}
	symbols, err := mapper.SymbolsFromResult(raw)
	if err != nil {
		c.degrade(sessionID, protocol.MethodTextDocumentDocumentSymbol, err)
		return nil
	}
	return symbols
}

func (c *controller) query(ctx context.Context, sessionID string, method string, params interface{}) (json.RawMessage, bool) {
	var raw json.RawMessage
	if err := c.Request(ctx, sessionID, method, params, &raw); err != nil {
		c.degrade(sessionID, method, err)
		return nil, false
	}
	return raw, true
}

func (c *controller) locations(sessionID string, method string, raw json.RawMessage) []protocol.Location {
	locations, err := mapper.LocationsFromResult(raw)
	if err != nil {
		c.degrade(sessionID, method, err)
		return nil
	}
	return locations
}

func (c *controller) degrade(sessionID string, method string, err error) {
	switch {
	case errors.IsTimeout(err):
		c.logger.Warnw("query timed out", "session", sessionID, "method", method, "error", err)
	case errors.IsNotInitialized(err):
		c.logger.Infow("query on a session that is not ready", "session", sessionID, "method", method, "error", err)
	default:
		c.logger.Debugw("query returned no result", "session", sessionID, "method", method, "error", err)
	}
}
