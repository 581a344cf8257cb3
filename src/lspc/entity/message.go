package entity

import (
	"github.com/segmentio/encoding/json"
)

// MessageKind discriminates inbound protocol messages.
type MessageKind int

const (
	// MessageKindResponse is a reply to a request this client issued.
	MessageKindResponse MessageKind = iota + 1
	// MessageKindNotification is a push from the server. Server-to-client requests are delivered as notifications.
	MessageKindNotification
)

// InboundMessage is a decoded message received from a server.
type InboundMessage struct {
	Kind MessageKind
	// ID is set for responses.
	ID int32
	// Method and Params are set for notifications.
	Method string
	Params json.RawMessage
	// Result and Error are set for responses. At most one of them is non-empty.
	Result json.RawMessage
	Error  *ResponseError
}

// ResponseError is the error member of a response envelope.
type ResponseError struct {
	Code    int32           `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// NotificationEvent is delivered to generic notification subscribers.
type NotificationEvent struct {
	SessionID string
	Method    string
	Params    json.RawMessage
}
