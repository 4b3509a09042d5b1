package websocket

import (
	"time"

	"github.com/goccy/go-json"
)

type MessageType string

const (
	TypeDeviceStatus     MessageType = "device_status"
	TypeAssignmentUpdate MessageType = "assignment_update"
	TypeContentUpdate    MessageType = "content_update"
	TypePing             MessageType = "ping"
	TypePong             MessageType = "pong"
)

type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

type DeviceStatusPayload struct {
	DeviceID string     `json:"device_id"`
	Name     string     `json:"name"`
	Status   string     `json:"status"`
	LastSync *time.Time `json:"last_sync,omitempty"`
}

type AssignmentUpdatePayload struct {
	DeviceID  string `json:"device_id"`
	ItemCount int    `json:"item_count"`
}

type ContentUpdatePayload struct {
	ContentID string `json:"content_id"`
	Name      string `json:"name"`
	Action    string `json:"action"`
}

func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	var payloadBytes json.RawMessage
	if payload != nil {
		bytes, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		payloadBytes = bytes
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now(),
		Payload:   payloadBytes,
	}, nil
}

func (m *Message) UnmarshalPayload(v interface{}) error {
	if m.Payload == nil {
		return nil
	}
	return json.Unmarshal(m.Payload, v)
}
