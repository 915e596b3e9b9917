package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// MessageType identifies websocket payload variants.
type MessageType string

const (
	TypePing              MessageType = "ping"
	TypePong              MessageType = "pong"
	TypeProcessing        MessageType = "processing"
	TypeAssistantResponse MessageType = "assistant_response"
	TypeError             MessageType = "error"
)

var ErrUnsupportedType = errors.New("unsupported message type")

type Envelope struct {
	Type MessageType `json:"type"`
}

// Ping is the only inbound text control frame; it is answered immediately
// without entering the exchange lifecycle.
type Ping struct {
	Type MessageType `json:"type"`
}

type Pong struct {
	Type MessageType `json:"type"`
}

// Processing tells the client its audio frame was accepted and an exchange is
// under way.
type Processing struct {
	Type MessageType `json:"type"`
}

type AssistantResponse struct {
	Type       MessageType `json:"type"`
	Transcript string      `json:"transcript"`
	ReplyText  string      `json:"replyText"`
}

// ErrorMessage is a recoverable per-message error; the connection stays open.
type ErrorMessage struct {
	Type    MessageType `json:"type"`
	Message string      `json:"message"`
}

func NewPong() Pong             { return Pong{Type: TypePong} }
func NewProcessing() Processing { return Processing{Type: TypeProcessing} }

func NewAssistantResponse(transcript, replyText string) AssistantResponse {
	return AssistantResponse{Type: TypeAssistantResponse, Transcript: transcript, ReplyText: replyText}
}

func NewError(message string) ErrorMessage {
	return ErrorMessage{Type: TypeError, Message: message}
}

// ParseClientMessage decodes an inbound text frame. Anything that is not a
// recognized control message is a recoverable per-message error.
func ParseClientMessage(raw []byte) (any, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("invalid envelope: %w", err)
	}

	switch env.Type {
	case TypePing:
		return Ping{Type: TypePing}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, env.Type)
	}
}

// MessageTypeOf reports the wire type of an outbound or parsed message, for
// metrics labels.
func MessageTypeOf(v any) (MessageType, bool) {
	switch m := v.(type) {
	case Ping:
		return m.Type, true
	case Pong:
		return m.Type, true
	case Processing:
		return m.Type, true
	case AssistantResponse:
		return m.Type, true
	case ErrorMessage:
		return m.Type, true
	default:
		return "", false
	}
}
