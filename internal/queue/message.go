package queue

import (
	"encoding/json"
	"fmt"
	"time"
)

// Procedure lifecycle events. Downstream consumers (review reminders, document
// library sync) subscribe to these.
const (
	EventAccepted = "procedure.accepted"
	EventRejected = "procedure.rejected"
)

const messageVersion = 1

// Message is the payload sent to downstream queue consumers. Rejected uploads
// still carry a ProcedureID; their record exists but has no stored file.
type Message struct {
	ProcedureID string `json:"procedureId,omitempty"`
	Event       string `json:"event"`
	Score       int    `json:"score"`
	OwnerID     string `json:"ownerId"`
	FileName    string `json:"fileName"`
	Department  string `json:"department,omitempty"`
	RequestID   string `json:"requestId,omitempty"`
	EnqueuedAt  string `json:"enqueuedAt"`
	Version     int    `json:"version"`
}

// NewMessage stamps a message with the current version and time.
func NewMessage(event string, now time.Time) Message {
	return Message{
		Event:      event,
		EnqueuedAt: now.UTC().Format(time.RFC3339),
		Version:    messageVersion,
	}
}

// EncodeMessage returns the JSON representation of a message.
func EncodeMessage(msg Message) ([]byte, error) {
	if msg.Event == "" {
		return nil, fmt.Errorf("encode message: event is required")
	}
	return json.Marshal(msg)
}

// DecodeMessage parses a JSON payload into a Message.
func DecodeMessage(payload []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, err
	}
	if msg.Version > messageVersion {
		return Message{}, fmt.Errorf("decode message: unsupported version %d", msg.Version)
	}
	return msg, nil
}
