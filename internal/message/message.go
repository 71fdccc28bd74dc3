// Package message defines the frames exchanged between a share extension
// and a running host over the local wake channel.
//
// Every frame is one line of JSON: <json>\n
package message

import (
	"encoding/json"
	"fmt"
	"time"
)

// Type identifies the kind of frame.
type Type string

const (
	TypeWake  Type = "WAKE"
	TypeError Type = "ERROR"
)

// Message is the frame envelope.
type Message struct {
	Type   Type   `json:"type"`
	Source string `json:"source,omitempty"`

	// WAKE: the host-specific URI that tells the host new data is waiting.
	URI    string    `json:"uri,omitempty"`
	SentAt time.Time `json:"sent_at,omitzero"`

	// ERROR
	Error string `json:"error,omitempty"`
}

// Wake returns a WAKE frame for uri.
func Wake(source, uri string) *Message {
	return &Message{Type: TypeWake, Source: source, URI: uri, SentAt: time.Now().UTC()}
}

// Errorf returns an ERROR frame.
func Errorf(format string, args ...any) *Message {
	return &Message{Type: TypeError, Error: fmt.Sprintf(format, args...)}
}

// Encode serialises the message to JSON without a trailing newline.
func (m *Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// Decode deserialises a message from raw JSON bytes.
func Decode(b []byte) (*Message, error) {
	var m Message
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("message decode: %w", err)
	}
	if m.Type == "" {
		return nil, fmt.Errorf("message decode: missing type")
	}
	return &m, nil
}
