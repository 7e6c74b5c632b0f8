package services

import (
	"encoding/json"
	"log"

	"github.com/sumeghna/collaborative-whiteboard/internal/models"
	"github.com/sumeghna/collaborative-whiteboard/internal/security"
)

// Session is the per-connection orchestrator. A connection starts unbound;
// a valid join-room binds it to exactly one room, and every later event is
// routed through the dispatch table to the matching room mutation and relay.
// Events that arrive while unbound have no room to act on and are dropped
// silently. All of a session's handlers run on the connection's read
// goroutine, one event at a time.
type Session struct {
	client   *Client
	hub      *Hub
	presence *Presence
	typing   *TypingCoordinator
	metrics  *Metrics

	routes map[string]func(*models.ClientMessage)

	// Bound room state; nil while unbound.
	room         *models.Room
	participant  *models.Participant
	disconnected bool
}

func NewSession(c *Client, presence *Presence, hub *Hub, typing *TypingCoordinator, metrics *Metrics) *Session {
	s := &Session{
		client:   c,
		hub:      hub,
		presence: presence,
		typing:   typing,
		metrics:  metrics,
	}

	s.routes = map[string]func(*models.ClientMessage){
		models.EventJoinRoom:    s.handleJoin,
		models.EventDraw:        s.handleDraw,
		models.EventClearCanvas: s.handleClear,
		models.EventSendMessage: s.handleChat,
		models.EventTyping:      s.handleTyping,
		models.EventStopTyping:  s.handleStopTyping,
		models.EventHeartbeat:   s.handleHeartbeat,
	}

	return s
}

func (s *Session) HandleMessage(data []byte) {
	var msg models.ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Printf("Error unmarshaling message: %v", err)
		return
	}

	handler, ok := s.routes[msg.Type]
	if !ok {
		// Unknown event names are dropped, not errors.
		return
	}

	if err := security.ValidateMessagePayload(&msg); err != nil {
		log.Printf("Dropping %s event: %v", msg.Type, err)
		return
	}

	handler(&msg)
}

func (s *Session) handleJoin(msg *models.ClientMessage) {
	if s.room != nil {
		// Already bound; one room per connection.
		return
	}

	var payload models.JoinPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return
	}

	roomID, err := security.ValidateRoomID(msg.RoomID)
	if err != nil {
		log.Printf("Rejected join: %v", err)
		return
	}
	username, err := security.ValidateUsername(payload.Username)
	if err != nil {
		log.Printf("Rejected join: %v", err)
		return
	}

	s.room, s.participant = s.presence.Join(s.client, roomID, username)
}

func (s *Session) handleDraw(msg *models.ClientMessage) {
	if s.room == nil {
		return
	}

	s.room.Lock()
	op := s.room.AppendDrawing(s.participant.ID, msg.Payload)
	// The sender already rendered its own stroke locally.
	s.hub.BroadcastToOthers(s.room.ID, s.client, &models.WSMessage{
		Type:    models.EventDrawing,
		Payload: op,
	})
	s.room.Unlock()

	s.metrics.IncrementDrawingOps()
}

func (s *Session) handleClear(msg *models.ClientMessage) {
	if s.room == nil {
		return
	}

	s.room.Lock()
	s.room.ClearDrawings()
	// Unlike draw, the clear goes to everyone including the invoker.
	s.hub.BroadcastToRoom(s.room.ID, &models.WSMessage{
		Type: models.EventCanvasCleared,
	})
	s.room.Unlock()

	log.Printf("🗑️  Canvas cleared in room %s", s.room.ID)
}

func (s *Session) handleChat(msg *models.ClientMessage) {
	if s.room == nil {
		return
	}

	var payload models.ChatPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return
	}

	s.room.Lock()
	chatMsg := s.room.AppendMessage(s.participant, payload.Message)
	if chatMsg != nil {
		// The sender's own chat render is authoritative from this echo.
		s.hub.BroadcastToRoom(s.room.ID, &models.WSMessage{
			Type:    models.EventReceiveMessage,
			Payload: chatMsg,
		})
	}
	s.room.Unlock()

	if chatMsg != nil {
		s.metrics.IncrementChatMessages()
	}
}

func (s *Session) handleTyping(msg *models.ClientMessage) {
	if s.room == nil {
		return
	}
	s.typing.Typing(s.room, s.client, s.participant)
}

func (s *Session) handleStopTyping(msg *models.ClientMessage) {
	if s.room == nil {
		return
	}
	s.typing.StopTyping(s.room, s.client, s.participant)
}

// handleHeartbeat echoes the client's timestamp back. Works even while
// unbound; heartbeats have no room context.
func (s *Session) handleHeartbeat(msg *models.ClientMessage) {
	var payload models.HeartbeatPayload
	if len(msg.Payload) > 0 {
		_ = json.Unmarshal(msg.Payload, &payload)
	}

	s.hub.SendToClient(s.client, &models.WSMessage{
		Type:    models.EventHeartbeatAck,
		Payload: models.HeartbeatPayload{Timestamp: payload.Timestamp},
	})
}

// HandleDisconnect tears the session down. Safe to reach more than once;
// only the first call has any effect.
func (s *Session) HandleDisconnect() {
	if s.disconnected {
		return
	}
	s.disconnected = true
	s.metrics.DecrementConnections()

	if s.room == nil {
		return
	}

	s.typing.CancelParticipant(s.room.ID, s.participant.ID)
	s.presence.Leave(s.client, s.room)
	s.room, s.participant = nil, nil
}
