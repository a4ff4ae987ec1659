// Package server defines the chat frame protocol spoken over WebSocket
// connections and the parse-and-validate step for inbound frames.
package server

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Tyrowin/relaychat/internal/channel"
)

// Frame types carried in the "type" field.
const (
	FrameTypeMessage = "message"
	FrameTypeError   = "error"
)

// Error frame messages sent back to the originating connection.
const (
	errInvalidFormat   = "invalid message format"
	errInvalidUTF8     = "invalid JSON: frame is not valid UTF-8"
	errEmptyFields     = "userName and text must not be empty"
	errChannelNotFound = "channel not found"
	errRateLimited     = "rate limit exceeded"
)

// MessageFrame is the client to server chat frame.
type MessageFrame struct {
	Type      string     `json:"type"`
	ChannelID channel.ID `json:"channelId"`
	UserName  string     `json:"userName"`
	Text      string     `json:"text"`
}

// ErrorFrame is sent only to the connection whose frame was rejected.
type ErrorFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func encodeErrorFrame(message string) []byte {
	// Marshalling two strings cannot fail.
	payload, _ := json.Marshal(ErrorFrame{Type: FrameTypeError, Message: message})
	return payload
}

// Inbound is the result of ParseInbound: either a *ChatMessage or a
// *Rejection.
type Inbound interface {
	inbound()
}

// ChatMessage is a structurally valid chat frame. Raw holds the original
// bytes, which are relayed verbatim once the message is accepted.
type ChatMessage struct {
	ChannelID channel.ID
	UserName  string
	Text      string
	Raw       []byte
}

// RejectionKind classifies why an inbound frame was refused.
type RejectionKind int

const (
	// RejectParse means the frame was not valid JSON.
	RejectParse RejectionKind = iota + 1
	// RejectFormat means a field was missing or had the wrong type.
	RejectFormat
	// RejectEmpty means userName or text was an empty string.
	RejectEmpty
	// RejectNotFound means channelId did not name a live channel.
	RejectNotFound
)

func (k RejectionKind) String() string {
	switch k {
	case RejectParse:
		return "parse"
	case RejectFormat:
		return "format"
	case RejectEmpty:
		return "empty"
	case RejectNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Rejection describes a refused frame. Message is what the sender sees.
type Rejection struct {
	Kind    RejectionKind
	Message string
}

func (r *Rejection) Error() string {
	return r.Message
}

func (*ChatMessage) inbound() {}
func (*Rejection) inbound()   {}

// Message returns the history entry for this chat message.
func (m *ChatMessage) Message() channel.Message {
	return channel.Message{UserName: m.UserName, Text: m.Text}
}

// ParseInbound parses and structurally validates one inbound frame.
func ParseInbound(raw []byte) Inbound {
	if !utf8.Valid(raw) {
		return &Rejection{Kind: RejectParse, Message: errInvalidUTF8}
	}

	var probe any
	if err := json.Unmarshal(raw, &probe); err != nil {
		return &Rejection{Kind: RejectParse, Message: "invalid JSON: " + err.Error()}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return &Rejection{Kind: RejectFormat, Message: errInvalidFormat}
	}

	frameType, ok := stringField(fields, "type")
	if !ok || frameType != FrameTypeMessage {
		return &Rejection{Kind: RejectFormat, Message: errInvalidFormat}
	}
	channelID, ok := integerField(fields, "channelId")
	if !ok {
		return &Rejection{Kind: RejectFormat, Message: errInvalidFormat}
	}
	userName, ok := stringField(fields, "userName")
	if !ok {
		return &Rejection{Kind: RejectFormat, Message: errInvalidFormat}
	}
	text, ok := stringField(fields, "text")
	if !ok {
		return &Rejection{Kind: RejectFormat, Message: errInvalidFormat}
	}

	if userName == "" || text == "" {
		return &Rejection{Kind: RejectEmpty, Message: errEmptyFields}
	}

	return &ChatMessage{
		ChannelID: channel.ID(channelID),
		UserName:  userName,
		Text:      text,
		Raw:       raw,
	}
}

func stringField(fields map[string]json.RawMessage, key string) (string, bool) {
	value := bytes.TrimSpace(fields[key])
	if len(value) == 0 || value[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(value, &s); err != nil {
		return "", false
	}
	return s, true
}

// integerField accepts only JSON number literals without a fraction or
// exponent that fit in an int64.
func integerField(fields map[string]json.RawMessage, key string) (int64, bool) {
	value := strings.TrimSpace(string(fields[key]))
	if value == "" || strings.ContainsAny(value, ".eE") {
		return 0, false
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
