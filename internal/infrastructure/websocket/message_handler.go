package websocket

import (
	"encoding/json"
	"time"
)

const (
	MessageTypePing = "ping"
	MessageTypePong = "pong"
)

// WSMessage is the envelope for client to server frames.
type WSMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// HandleMessage returns the frame to send back for an incoming frame, if any.
// Clients only listen for events; pings are the one thing they send.
func HandleMessage(raw []byte) []byte {
	var msg WSMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil
	}

	switch msg.Type {
	case MessageTypePing:
		reply, _ := json.Marshal(WSMessage{Type: MessageTypePong, Timestamp: time.Now().Unix()})
		return reply
	}
	return nil
}
