package mapper

import (
	"bytes"
	"fmt"

	"github.com/segmentio/encoding/json"
	"github.com/uber/lspc/src/lspc/entity"
	"github.com/uber/lspc/src/lspc/internal/errors"
	"go.lsp.dev/jsonrpc2"
)

var _null = []byte("null")

// inboundWire is the union of every envelope a server may send.
type inboundWire struct {
	ID     json.RawMessage       `json:"id"`
	Method string                `json:"method"`
	Params json.RawMessage       `json:"params"`
	Result json.RawMessage       `json:"result"`
	Error  *entity.ResponseError `json:"error"`
}

// RequestToBytes serializes a request envelope with a numeric id.
func RequestToBytes(id int32, method string, params interface{}) ([]byte, error) {
	call, err := jsonrpc2.NewCall(jsonrpc2.NewNumberID(id), method, params)
	if err != nil {
		return nil, fmt.Errorf("building %s request: %w", method, err)
	}
	return json.Marshal(call)
}

// NotificationToBytes serializes a notification envelope.
func NotificationToBytes(method string, params interface{}) ([]byte, error) {
	n, err := jsonrpc2.NewNotification(method, params)
	if err != nil {
		return nil, fmt.Errorf("building %s notification: %w", method, err)
	}
	return json.Marshal(n)
}

// BytesToInboundMessage decodes a raw server message into a response or a notification.
// A message with a method is a notification; a message with a non-null id and no method is a response.
// Anything else is a MalformedMessageError.
func BytesToInboundMessage(raw []byte) (*entity.InboundMessage, error) {
	var w inboundWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, &errors.MalformedMessageError{Reason: err.Error()}
	}

	if w.Method != "" {
		return &entity.InboundMessage{
			Kind:   entity.MessageKindNotification,
			Method: w.Method,
			Params: w.Params,
		}, nil
	}

	id := bytes.TrimSpace(w.ID)
	if len(id) == 0 || bytes.Equal(id, _null) {
		return nil, &errors.MalformedMessageError{Reason: "message has neither a method nor an id"}
	}

	var n int32
	if err := json.Unmarshal(id, &n); err != nil {
		return nil, &errors.MalformedMessageError{Reason: fmt.Sprintf("unsupported response id %s", id)}
	}

	return &entity.InboundMessage{
		Kind:   entity.MessageKindResponse,
		ID:     n,
		Result: w.Result,
		Error:  w.Error,
	}, nil
}

// ResponseErrorToError converts an error envelope into a ProtocolError for method.
func ResponseErrorToError(method string, e *entity.ResponseError) error {
	if e == nil {
		return nil
	}
	return &errors.ProtocolError{
		Method:  method,
		Code:    e.Code,
		Message: e.Message,
	}
}
