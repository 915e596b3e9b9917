package protocol

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseClientMessagePing(t *testing.T) {
	msg, err := ParseClientMessage([]byte(`{"type":"ping"}`))
	if err != nil {
		t.Fatalf("ParseClientMessage() error = %v", err)
	}
	if _, ok := msg.(Ping); !ok {
		t.Fatalf("message type = %T, want Ping", msg)
	}
}

func TestParseClientMessageRejectsUnknownType(t *testing.T) {
	_, err := ParseClientMessage([]byte(`{"type":"dance"}`))
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("error = %v, want ErrUnsupportedType", err)
	}
}

func TestParseClientMessageRejectsBadJSON(t *testing.T) {
	if _, err := ParseClientMessage([]byte(`not json`)); err == nil {
		t.Fatalf("malformed frame should fail to parse")
	}
}

func TestAssistantResponseWireShape(t *testing.T) {
	raw, err := json.Marshal(NewAssistantResponse("hi", "hello there"))
	if err != nil {
		t.Fatalf("marshal error = %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal error = %v", err)
	}
	if decoded["type"] != "assistant_response" {
		t.Fatalf("type = %v", decoded["type"])
	}
	if decoded["transcript"] != "hi" {
		t.Fatalf("transcript = %v", decoded["transcript"])
	}
	if decoded["replyText"] != "hello there" {
		t.Fatalf("replyText = %v", decoded["replyText"])
	}
}

func TestMessageTypeOf(t *testing.T) {
	tests := []struct {
		msg  any
		want MessageType
	}{
		{NewPong(), TypePong},
		{NewProcessing(), TypeProcessing},
		{NewAssistantResponse("a", "b"), TypeAssistantResponse},
		{NewError("bad"), TypeError},
		{Ping{Type: TypePing}, TypePing},
	}
	for _, tc := range tests {
		got, ok := MessageTypeOf(tc.msg)
		if !ok || got != tc.want {
			t.Fatalf("MessageTypeOf(%T) = %q/%v, want %q", tc.msg, got, ok, tc.want)
		}
	}

	if _, ok := MessageTypeOf(42); ok {
		t.Fatalf("MessageTypeOf should reject unknown values")
	}
}
