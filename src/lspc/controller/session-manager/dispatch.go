package sessionmanager

import (
	"github.com/segmentio/encoding/json"
	"github.com/uber/lspc/src/lspc/entity"
	"github.com/uber/lspc/src/lspc/mapper"
	"go.lsp.dev/protocol"
)

func (c *controller) OnMessage(event entity.InboundEvent) {
	msg, err := mapper.BytesToInboundMessage(event.Message)
	if err != nil {
		c.dropMalformed(event.SessionID, err)
		return
	}

	switch msg.Kind {
	case entity.MessageKindResponse:
		c.dispatchResponse(msg)
	case entity.MessageKindNotification:
		c.dispatchNotification(event.SessionID, msg)
	}
}

func (c *controller) dispatchResponse(msg *entity.InboundMessage) {
	if msg.Error != nil {
		method, _ := c.correlation.Method(msg.ID)
		c.correlation.Reject(msg.ID, mapper.ResponseErrorToError(method, msg.Error))
		return
	}
	c.correlation.Resolve(msg.ID, msg.Result)
}

// dispatchNotification delivers to generic subscribers before diagnostics subscribers.
func (c *controller) dispatchNotification(sessionID string, msg *entity.InboundMessage) {
	c.notifications.Publish(entity.NotificationEvent{
		SessionID: sessionID,
		Method:    msg.Method,
		Params:    msg.Params,
	})

	if msg.Method != protocol.MethodTextDocumentPublishDiagnostics {
		return
	}

	var params protocol.PublishDiagnosticsParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		c.dropMalformed(sessionID, err)
		return
	}
	c.diagnostics.Publish(entity.DiagnosticsEvent{
		SessionID:   sessionID,
		URI:         params.URI,
		Version:     params.Version,
		Diagnostics: params.Diagnostics,
	})
}

func (c *controller) dropMalformed(sessionID string, err error) {
	c.malformed.Inc(1)
	c.logger.Warnw("malformed message", "session", sessionID, "error", err)
}

func (c *controller) SubscribeNotifications(handler func(entity.NotificationEvent)) func() {
	return c.notifications.Subscribe(handler)
}

func (c *controller) SubscribeDiagnostics(handler func(entity.DiagnosticsEvent)) func() {
	return c.diagnostics.Subscribe(handler)
}
