package security

import (
	"fmt"

	"github.com/coder/websocket"

	"github.com/sumeghna/collaborative-whiteboard/internal/models"
)

// Inbound event type allowlist
var validEventTypes = map[string]bool{
	models.EventJoinRoom:    true,
	models.EventDraw:        true,
	models.EventClearCanvas: true,
	models.EventSendMessage: true,
	models.EventTyping:      true,
	models.EventStopTyping:  true,
	models.EventHeartbeat:   true,
}

// IsValidEventType checks if an inbound event type is part of the protocol
func IsValidEventType(eventType string) bool {
	return validEventTypes[eventType]
}

// ValidateMessagePayload validates inbound envelope structure per event type.
// Draw payloads are deliberately not inspected: they are opaque to the
// server.
func ValidateMessagePayload(msg *models.ClientMessage) error {
	if !IsValidEventType(msg.Type) {
		return fmt.Errorf("unknown event type %q", msg.Type)
	}

	switch msg.Type {
	case models.EventJoinRoom:
		if msg.RoomID == "" {
			return fmt.Errorf("join-room requires a room id")
		}
		if len(msg.Payload) == 0 {
			return fmt.Errorf("join-room requires a payload")
		}

	case models.EventDraw:
		if len(msg.Payload) == 0 {
			return fmt.Errorf("draw requires a payload")
		}

	case models.EventSendMessage:
		if len(msg.Payload) == 0 {
			return fmt.Errorf("send-message requires a payload")
		}
	}

	return nil
}

// OriginValidator validates WebSocket connection origins
type OriginValidator struct {
	allowedPatterns []string
}

func NewOriginValidator(patterns []string) *OriginValidator {
	return &OriginValidator{
		allowedPatterns: patterns,
	}
}

// AcceptOptions returns websocket.AcceptOptions with the configured origin
// patterns
func (ov *OriginValidator) AcceptOptions() *websocket.AcceptOptions {
	return &websocket.AcceptOptions{
		OriginPatterns: ov.allowedPatterns,
	}
}
