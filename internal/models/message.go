package models

import "encoding/json"

// WSMessage is the wire envelope for every event, in either direction.
type WSMessage struct {
	Type    string      `json:"type"`
	RoomID  string      `json:"roomId,omitempty"`
	Payload interface{} `json:"payload,omitempty"`
}

// ClientMessage is the inbound form of the envelope. The payload stays raw
// until the handler for the event type decodes it; draw payloads are never
// decoded at all.
type ClientMessage struct {
	Type    string          `json:"type"`
	RoomID  string          `json:"roomId,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Client → Server event types
const (
	EventJoinRoom    = "join-room"
	EventDraw        = "draw"
	EventClearCanvas = "clear-canvas"
	EventSendMessage = "send-message"
	EventTyping      = "typing"
	EventStopTyping  = "stop-typing"
	EventHeartbeat   = "heartbeat"
)

// Server → Client event types
const (
	EventRoomUsers      = "room-users"      // participant list, joiner only
	EventLoadDrawings   = "load-drawings"   // drawing history, joiner only
	EventLoadMessages   = "load-messages"   // chat history, joiner only
	EventUserJoined     = "user-joined"
	EventUserLeft       = "user-left"
	EventDrawing        = "drawing"
	EventCanvasCleared  = "canvas-cleared"
	EventReceiveMessage = "receive-message"
	EventUserTyping     = "user-typing"
	EventTypingTimeout  = "typing-timeout"
	EventHeartbeatAck   = "heartbeat-ack"
	EventError          = "error"
)

type JoinPayload struct {
	Username string `json:"username"`
}

type ChatPayload struct {
	Message string `json:"message"`
}

type HeartbeatPayload struct {
	Timestamp int64 `json:"timestamp"`
}

type UserTypingPayload struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	IsTyping bool   `json:"isTyping"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
